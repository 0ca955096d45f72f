// Package review applies administrator decisions to merchant onboarding.
package review

import (
	"context"
	"time"

	"go.uber.org/zap"

	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

type Merchants interface {
	Get(ctx context.Context, merchantID string) (store.MerchantProfile, error)
	Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) error
}

type Engine interface {
	Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) error
}

type Service struct {
	merchants Merchants
	engine    Engine
	log       *zap.Logger
	now       func() time.Time
}

func New(merchants Merchants, engine Engine, log *zap.Logger) *Service {
	return &Service{merchants: merchants, engine: engine, log: log, now: time.Now}
}

// Decide records a decision for a pending merchant and forwards it to the
// onboarding workflow. Approval requires every step to be complete and
// payments to be enabled. The store
// repeats both checks in its update, so a concurrent review cannot slip past.
// A failed workflow signal is logged; the stored decision stands.
func (s *Service) Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) (shared.ReviewDecision, error) {
	p, err := s.merchants.Get(ctx, merchantID)
	if err != nil {
		return d, err
	}
	if p.OnboardingStatus != shared.StatusPending {
		return d, store.ErrAlreadyDecided
	}
	if d.Decision == shared.DecisionApprove {
		if p.PaymentsDisabled {
			return d, store.ErrPaymentsDisabled
		}
		if !completion.Approvable(p.Flags()) {
			return d, store.ErrNotApprovable
		}
	}

	if d.DecidedAt.IsZero() {
		d.DecidedAt = s.now().UTC()
	}
	if err := s.merchants.Decide(ctx, merchantID, d); err != nil {
		return d, err
	}

	log := logger.For(ctx, s.log).With(
		zap.String("merchantId", merchantID),
		zap.String("decision", string(d.Decision)),
	)
	if err := s.engine.Decide(ctx, merchantID, d); err != nil {
		log.Warn("Failed to signal review decision", zap.Error(err))
	}
	log.Info("Merchant reviewed", zap.String("reviewerId", d.ReviewerID))
	return d, nil
}
