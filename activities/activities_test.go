package activities_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"merchant-kyc-portal/activities"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

type mockMerchants struct {
	mock.Mock
}

func (m *mockMerchants) Get(ctx context.Context, merchantID string) (store.MerchantProfile, error) {
	args := m.Called(ctx, merchantID)
	return args.Get(0).(store.MerchantProfile), args.Error(1)
}

func (m *mockMerchants) SetScreening(ctx context.Context, merchantID string, result shared.VerificationResult) error {
	return m.Called(ctx, merchantID, result).Error(0)
}

func (m *mockMerchants) DisablePayments(ctx context.Context, merchantID string) error {
	return m.Called(ctx, merchantID).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, req shared.NotificationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func newEnv() *testsuite.TestActivityEnvironment {
	testSuite := &testsuite.WorkflowTestSuite{}
	return testSuite.NewTestActivityEnvironment()
}

func profileIn(country string) store.MerchantProfile {
	return store.MerchantProfile{
		MerchantID:         "MERCH-001",
		CompanyInformation: &shared.CompanyInformation{LegalName: "Acme", Country: country},
	}
}

func TestSendNotification(t *testing.T) {
	env := newEnv()
	n := new(mockNotifier)
	a := &activities.Activities{Notifier: n}
	env.RegisterActivity(a.SendNotification)

	req := shared.NotificationRequest{MerchantID: "MERCH-001", Email: "test@example.com", Kind: shared.NotificationDay30}
	n.On("Notify", mock.Anything, req).Return("NOTIFY-MERCH-001-day30", nil).Once()

	result, err := env.ExecuteActivity(a.SendNotification, req)
	require.NoError(t, err)

	var id string
	require.NoError(t, result.Get(&id))
	assert.Equal(t, "NOTIFY-MERCH-001-day30", id)
	n.AssertExpectations(t)
}

func TestSendNotification_Failure(t *testing.T) {
	env := newEnv()
	n := new(mockNotifier)
	a := &activities.Activities{Notifier: n}
	env.RegisterActivity(a.SendNotification)
	n.On("Notify", mock.Anything, mock.Anything).Return("", assert.AnError)

	_, err := env.ExecuteActivity(a.SendNotification, shared.NotificationRequest{MerchantID: "MERCH-001"})
	assert.Error(t, err)
}

func TestDisablePayments(t *testing.T) {
	env := newEnv()
	m := new(mockMerchants)
	a := &activities.Activities{Merchants: m}
	env.RegisterActivity(a.DisablePayments)
	m.On("DisablePayments", mock.Anything, "MERCH-001").Return(nil).Once()

	_, err := env.ExecuteActivity(a.DisablePayments, "MERCH-001")
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestDisablePayments_UnknownMerchantIsNonRetryable(t *testing.T) {
	env := newEnv()
	m := new(mockMerchants)
	a := &activities.Activities{Merchants: m}
	env.RegisterActivity(a.DisablePayments)
	m.On("DisablePayments", mock.Anything, "MERCH-404").Return(store.ErrMerchantNotFound)

	_, err := env.ExecuteActivity(a.DisablePayments, "MERCH-404")
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, shared.ErrTypeMerchantNotFound, appErr.Type())
	assert.True(t, appErr.NonRetryable())
}

func TestRecordScreening(t *testing.T) {
	env := newEnv()
	m := new(mockMerchants)
	a := &activities.Activities{Merchants: m}
	env.RegisterActivity(a.RecordScreening)

	res := shared.VerificationResult{Passed: true, VerificationID: "SCREEN-MERCH-001"}
	m.On("SetScreening", mock.Anything, "MERCH-001", res).Return(nil).Once()

	_, err := env.ExecuteActivity(a.RecordScreening, "MERCH-001", res)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestValidateWithSupplier_AcceptedReference(t *testing.T) {
	env := newEnv()
	a := &activities.Activities{}
	env.RegisterActivity(a.ValidateWithSupplier)

	doc := shared.DocumentUpload{
		MerchantID:   "MERCH-001",
		DocumentType: shared.DocGovernmentID,
		URL:          "https://files.example.com/documents/passport.pdf",
	}
	result, err := env.ExecuteActivity(a.ValidateWithSupplier, doc)
	require.NoError(t, err)

	var res shared.VerificationResult
	require.NoError(t, result.Get(&res))
	assert.True(t, res.Passed)
	assert.Equal(t, "SUP-MERCH-001-governmentId", res.VerificationID)
}

func TestValidateWithSupplier_RejectedReference(t *testing.T) {
	for name, url := range map[string]string{
		"scheme":    "ftp://files.example.com/passport.pdf",
		"extension": "https://files.example.com/passport.exe",
		"no host":   "https:///passport.pdf",
	} {
		t.Run(name, func(t *testing.T) {
			env := newEnv()
			a := &activities.Activities{}
			env.RegisterActivity(a.ValidateWithSupplier)

			_, err := env.ExecuteActivity(a.ValidateWithSupplier, shared.DocumentUpload{
				MerchantID: "MERCH-001", DocumentType: shared.DocGovernmentID, URL: url,
			})
			var appErr *temporal.ApplicationError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, shared.ErrTypeDocumentRejected, appErr.Type())
		})
	}
}

func TestPerformInternalVerifications(t *testing.T) {
	tests := []struct {
		name    string
		profile store.MerchantProfile
		passed  bool
	}{
		{"clean country", profileIn("NL"), true},
		{"sanctioned country", profileIn("kp"), false},
		{"no company information", store.MerchantProfile{MerchantID: "MERCH-001"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv()
			m := new(mockMerchants)
			a := &activities.Activities{Merchants: m, SanctionedCountries: []string{"KP", "IR"}}
			env.RegisterActivity(a.PerformInternalVerifications)
			m.On("Get", mock.Anything, "MERCH-001").Return(tt.profile, nil)

			result, err := env.ExecuteActivity(a.PerformInternalVerifications, "MERCH-001")
			require.NoError(t, err)

			var res shared.VerificationResult
			require.NoError(t, result.Get(&res))
			assert.Equal(t, tt.passed, res.Passed)
		})
	}
}

func TestPerformInternalVerifications_UnknownMerchant(t *testing.T) {
	env := newEnv()
	m := new(mockMerchants)
	a := &activities.Activities{Merchants: m}
	env.RegisterActivity(a.PerformInternalVerifications)
	m.On("Get", mock.Anything, "MERCH-404").Return(store.MerchantProfile{}, store.ErrMerchantNotFound)

	_, err := env.ExecuteActivity(a.PerformInternalVerifications, "MERCH-404")
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, shared.ErrTypeMerchantNotFound, appErr.Type())
}
