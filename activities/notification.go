package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"merchant-kyc-portal/shared"
)

// SendNotification delivers a reminder or outcome notice to the merchant.
// Not idempotent: a retry after a lost ack sends a second message. The
// notification kind and merchant id travel as attributes so consumers can
// deduplicate.
func (a *Activities) SendNotification(ctx context.Context, req shared.NotificationRequest) (string, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Sending notification",
		"merchantId", req.MerchantID,
		"kind", req.Kind,
		"email", req.Email,
	)

	id, err := a.Notifier.Notify(ctx, req)
	if err != nil {
		return "", err
	}
	logger.Info("Notification sent", "notificationId", id)
	return id, nil
}
