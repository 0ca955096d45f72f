package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/shared"
)

var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrMerchantExists   = errors.New("merchant already exists")
	ErrStepExists       = errors.New("step already submitted")
	ErrStepNotFound     = errors.New("step not submitted yet")
	ErrUnknownStep      = errors.New("unknown onboarding step")
	ErrAlreadyDecided   = errors.New("merchant already reviewed")
	ErrNotApprovable    = errors.New("merchant has incomplete onboarding steps")
	ErrPaymentsDisabled = errors.New("merchant payments are disabled")
)

// notSuspended matches merchants whose payments have not been disabled.
var notSuspended = bson.M{"$ne": true}

// SaveMode selects create or replace semantics for a step save.
type SaveMode int

const (
	// SaveCreate fails with ErrStepExists when the step already has data.
	SaveCreate SaveMode = iota
	// SaveReplace fails with ErrStepNotFound when the step has no data yet.
	SaveReplace
)

type MerchantStore struct {
	repo *repository[MerchantProfile]
	now  func() time.Time
}

func NewMerchantStore(db *mongo.Database) *MerchantStore {
	return &MerchantStore{
		repo: newRepository[MerchantProfile](db.Collection(MerchantsCollection)),
		now:  time.Now,
	}
}

func (s *MerchantStore) Create(ctx context.Context, p MerchantProfile) error {
	err := s.repo.insert(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrMerchantExists
	}
	if err != nil {
		return fmt.Errorf("insert merchant %s: %w", p.MerchantID, err)
	}
	return nil
}

func (s *MerchantStore) Get(ctx context.Context, merchantID string) (MerchantProfile, error) {
	p, err := s.repo.findOne(ctx, bson.M{"_id": merchantID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return MerchantProfile{}, ErrMerchantNotFound
	}
	if err != nil {
		return MerchantProfile{}, fmt.Errorf("find merchant %s: %w", merchantID, err)
	}
	return p, nil
}

// List returns profiles newest first. An empty status lists every profile.
func (s *MerchantStore) List(ctx context.Context, status shared.OnboardingStatus) ([]MerchantProfile, error) {
	filter := bson.M{}
	if status != "" {
		filter["onboardingStatus"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	profiles, err := s.repo.find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	return profiles, nil
}

// SaveStep stores form under step and sets the step flag. Steps can only be
// saved while the merchant is pending review and payments are enabled.
func (s *MerchantStore) SaveStep(ctx context.Context, merchantID string, step completion.Step, form shared.StepForm, mode SaveMode) error {
	if !step.Valid() {
		return ErrUnknownStep
	}
	field := string(step)
	filter := bson.M{
		"_id":              merchantID,
		"onboardingStatus": shared.StatusPending,
		"paymentsDisabled": notSuspended,
		field:              bson.M{"$exists": mode == SaveReplace},
	}
	update := bson.M{"$set": bson.M{
		field:                         form,
		"completionSummary." + field: true,
		"updatedAt":                   s.now().UTC(),
	}}

	matched, err := s.repo.updateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("save step %s for merchant %s: %w", step, merchantID, err)
	}
	if matched {
		return nil
	}

	p, err := s.Get(ctx, merchantID)
	if err != nil {
		return err
	}
	switch {
	case p.OnboardingStatus != shared.StatusPending:
		return ErrAlreadyDecided
	case p.PaymentsDisabled:
		return ErrPaymentsDisabled
	case p.HasStep(step):
		return ErrStepExists
	default:
		return ErrStepNotFound
	}
}

// Decide records a review decision. Only pending merchants can be decided.
// Approval additionally requires every step flag to be set and payments to
// be enabled. The checks are part of the update filter so concurrent reviews
// cannot race past them.
func (s *MerchantStore) Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) error {
	filter := bson.M{
		"_id":              merchantID,
		"onboardingStatus": shared.StatusPending,
	}
	if d.Decision == shared.DecisionApprove {
		filter["paymentsDisabled"] = notSuspended
		for _, step := range completion.Steps {
			filter["completionSummary."+string(step)] = true
		}
	}
	update := bson.M{"$set": bson.M{
		"onboardingStatus": d.Decision.Status(),
		"review":           d,
		"updatedAt":        s.now().UTC(),
	}}

	matched, err := s.repo.updateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("record decision for merchant %s: %w", merchantID, err)
	}
	if matched {
		return nil
	}

	p, err := s.Get(ctx, merchantID)
	if err != nil {
		return err
	}
	if p.OnboardingStatus != shared.StatusPending {
		return ErrAlreadyDecided
	}
	if p.PaymentsDisabled {
		return ErrPaymentsDisabled
	}
	return ErrNotApprovable
}

// SetScreening stores the advisory document screening result.
func (s *MerchantStore) SetScreening(ctx context.Context, merchantID string, result shared.VerificationResult) error {
	return s.set(ctx, merchantID, bson.M{"screening": result})
}

// DisablePayments flags the merchant as unable to process payments.
func (s *MerchantStore) DisablePayments(ctx context.Context, merchantID string) error {
	return s.set(ctx, merchantID, bson.M{"paymentsDisabled": true})
}

func (s *MerchantStore) set(ctx context.Context, merchantID string, fields bson.M) error {
	fields["updatedAt"] = s.now().UTC()
	matched, err := s.repo.updateOne(ctx, bson.M{"_id": merchantID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update merchant %s: %w", merchantID, err)
	}
	if !matched {
		return ErrMerchantNotFound
	}
	return nil
}
