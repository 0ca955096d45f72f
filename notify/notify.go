// Package notify delivers merchant notifications: reminders, review outcomes
// and payment suspension notices.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"go.uber.org/zap"

	"merchant-kyc-portal/shared"
)

// Notifier sends one notification and returns its delivery id.
type Notifier interface {
	Notify(ctx context.Context, req shared.NotificationRequest) (string, error)
}

// Message is the JSON body published for downstream mailers.
type Message struct {
	MerchantID string    `json:"merchantId"`
	Email      string    `json:"email"`
	Kind       string    `json:"kind"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TopicPublisher publishes raw messages to one topic.
type TopicPublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

type PubSubNotifier struct {
	topic TopicPublisher
	now   func() time.Time
}

func NewPubSubNotifier(topic TopicPublisher) *PubSubNotifier {
	return &PubSubNotifier{topic: topic, now: time.Now}
}

func (n *PubSubNotifier) Notify(ctx context.Context, req shared.NotificationRequest) (string, error) {
	data, err := json.Marshal(Message{
		MerchantID: req.MerchantID,
		Email:      req.Email,
		Kind:       req.Kind,
		Reason:     req.Reason,
		CreatedAt:  n.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("encode notification: %w", err)
	}
	id, err := n.topic.Publish(ctx, data, map[string]string{
		"kind":       req.Kind,
		"merchantId": req.MerchantID,
	})
	if err != nil {
		return "", fmt.Errorf("publish %s notification for merchant %s: %w", req.Kind, req.MerchantID, err)
	}
	return id, nil
}

// Topic publishes to a Cloud Pub/Sub topic.
type Topic struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

// NewTopic opens a Pub/Sub client for projectID publishing to topic.
func NewTopic(ctx context.Context, projectID, topic string) (*Topic, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &Topic{client: client, publisher: client.Publisher(topic)}, nil
}

func (t *Topic) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	res := t.publisher.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes})
	return res.Get(ctx)
}

// Close flushes pending messages and releases the client.
func (t *Topic) Close() error {
	t.publisher.Stop()
	return t.client.Close()
}

// LogNotifier writes notifications to the log. It is used when Pub/Sub is
// disabled.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, req shared.NotificationRequest) (string, error) {
	id := fmt.Sprintf("NOTIFY-%s-%s", req.MerchantID, req.Kind)
	n.log.Info("Notification",
		zap.String("notificationId", id),
		zap.String("merchantId", req.MerchantID),
		zap.String("kind", req.Kind),
		zap.String("email", req.Email),
	)
	return id, nil
}
