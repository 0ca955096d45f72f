package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"merchant-kyc-portal/completion"
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

func (m *mockMerchants) Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) error {
	return m.Called(ctx, merchantID, d).Error(0)
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) error {
	return m.Called(ctx, merchantID, d).Error(0)
}

func profile(status shared.OnboardingStatus, completed int) store.MerchantProfile {
	flags := completion.Flags{}
	for _, s := range completion.Steps[:completed] {
		flags[s] = true
	}
	return store.MerchantProfile{MerchantID: "M-1", OnboardingStatus: status, CompletionSummary: flags.ToStrings()}
}

func suspended(p store.MerchantProfile) store.MerchantProfile {
	p.PaymentsDisabled = true
	return p
}

func newService(m *mockMerchants, e *mockEngine) *Service {
	s := New(m, e, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestDecide_Approve(t *testing.T) {
	m, e := new(mockMerchants), new(mockEngine)
	m.On("Get", mock.Anything, "M-1").Return(profile(shared.StatusPending, 6), nil)
	m.On("Decide", mock.Anything, "M-1", mock.Anything).Return(nil).Once()
	e.On("Decide", mock.Anything, "M-1", mock.Anything).Return(nil).Once()

	d, err := newService(m, e).Decide(context.Background(), "M-1", shared.ReviewDecision{
		Decision: shared.DecisionApprove, ReviewerID: "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 2026, d.DecidedAt.Year())
	m.AssertExpectations(t)
	e.AssertExpectations(t)
}

func TestDecide_Gate(t *testing.T) {
	tests := []struct {
		name     string
		profile  store.MerchantProfile
		decision shared.Decision
		want     error
	}{
		{"approve incomplete", profile(shared.StatusPending, 5), shared.DecisionApprove, store.ErrNotApprovable},
		{"approve decided", profile(shared.StatusRejected, 6), shared.DecisionApprove, store.ErrAlreadyDecided},
		{"reject decided", profile(shared.StatusApproved, 6), shared.DecisionReject, store.ErrAlreadyDecided},
		{"approve suspended", suspended(profile(shared.StatusPending, 6)), shared.DecisionApprove, store.ErrPaymentsDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, e := new(mockMerchants), new(mockEngine)
			m.On("Get", mock.Anything, "M-1").Return(tt.profile, nil)

			_, err := newService(m, e).Decide(context.Background(), "M-1", shared.ReviewDecision{Decision: tt.decision})
			assert.ErrorIs(t, err, tt.want)
			m.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything)
			e.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDecide_RejectIncomplete(t *testing.T) {
	m, e := new(mockMerchants), new(mockEngine)
	m.On("Get", mock.Anything, "M-1").Return(profile(shared.StatusPending, 1), nil)
	m.On("Decide", mock.Anything, "M-1", mock.Anything).Return(nil)
	e.On("Decide", mock.Anything, "M-1", mock.Anything).Return(nil)

	_, err := newService(m, e).Decide(context.Background(), "M-1", shared.ReviewDecision{Decision: shared.DecisionReject})
	assert.NoError(t, err)
}

func TestDecide_SignalFailureKeepsDecision(t *testing.T) {
	m, e := new(mockMerchants), new(mockEngine)
	m.On("Get", mock.Anything, "M-1").Return(profile(shared.StatusPending, 6), nil)
	m.On("Decide", mock.Anything, "M-1", mock.Anything).Return(nil)
	e.On("Decide", mock.Anything, "M-1", mock.Anything).Return(assert.AnError)

	_, err := newService(m, e).Decide(context.Background(), "M-1", shared.ReviewDecision{Decision: shared.DecisionApprove})
	assert.NoError(t, err)
}

func TestDecide_StoreRace(t *testing.T) {
	m, e := new(mockMerchants), new(mockEngine)
	m.On("Get", mock.Anything, "M-1").Return(profile(shared.StatusPending, 6), nil)
	m.On("Decide", mock.Anything, "M-1", mock.Anything).Return(store.ErrAlreadyDecided)

	_, err := newService(m, e).Decide(context.Background(), "M-1", shared.ReviewDecision{Decision: shared.DecisionApprove})
	assert.ErrorIs(t, err, store.ErrAlreadyDecided)
	e.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything)
}
