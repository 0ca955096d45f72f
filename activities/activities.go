package activities

import (
	"context"

	"merchant-kyc-portal/notify"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

// MerchantStore is the part of the merchant store the activities write to.
type MerchantStore interface {
	Get(ctx context.Context, merchantID string) (store.MerchantProfile, error)
	SetScreening(ctx context.Context, merchantID string, result shared.VerificationResult) error
	DisablePayments(ctx context.Context, merchantID string) error
}

// Activities is the receiver for all activity methods. Registering the struct
// lets the worker discover every method, and its fields carry the
// dependencies the methods need. Tests replace them with fakes.
type Activities struct {
	Merchants           MerchantStore
	Notifier            notify.Notifier
	SanctionedCountries []string
}
