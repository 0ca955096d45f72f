package activities

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

// DisablePayments disables payment processing for a merchant who has not
// completed onboarding by the compliance deadline. Naturally idempotent.
func (a *Activities) DisablePayments(ctx context.Context, merchantID string) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Disabling payments for merchant", "merchantId", merchantID)

	if err := a.Merchants.DisablePayments(ctx, merchantID); err != nil {
		return merchantError(merchantID, err)
	}
	logger.Info("Payments disabled", "merchantId", merchantID)
	return nil
}

// RecordScreening stores the document screening result on the merchant
// profile so reviewers can see it.
func (a *Activities) RecordScreening(ctx context.Context, merchantID string, result shared.VerificationResult) error {
	activity.GetLogger(ctx).Info("Recording screening result",
		"merchantId", merchantID,
		"passed", result.Passed,
	)
	if err := a.Merchants.SetScreening(ctx, merchantID, result); err != nil {
		return merchantError(merchantID, err)
	}
	return nil
}

// merchantError turns a missing merchant into a non-retryable failure.
func merchantError(merchantID string, err error) error {
	if errors.Is(err, store.ErrMerchantNotFound) {
		return temporal.NewNonRetryableApplicationError(
			"merchant "+merchantID+" not found",
			shared.ErrTypeMerchantNotFound,
			err,
		)
	}
	return err
}
