package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/shared"
)

const merchantsNS = "kyc_portal.merchants"

func merchantDoc(status shared.OnboardingStatus, summary bson.D, extra ...bson.E) bson.D {
	doc := bson.D{
		{Key: "_id", Value: "M-1"},
		{Key: "userId", Value: "U-1"},
		{Key: "email", Value: "ops@acme.test"},
		{Key: "onboardingStatus", Value: string(status)},
		{Key: "completionSummary", Value: summary},
	}
	return append(doc, extra...)
}

func updated(n int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: n},
		bson.E{Key: "nModified", Value: n},
	)
}

func TestMerchantStore_Get(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch,
			merchantDoc(shared.StatusPending, bson.D{{Key: "ubo", Value: true}, {Key: "kycdocs", Value: false}}),
		))

		p, err := s.Get(context.Background(), "M-1")
		require.NoError(t, err)
		assert.Equal(t, "M-1", p.MerchantID)
		assert.Equal(t, shared.StatusPending, p.OnboardingStatus)
		assert.Equal(t, 1, completion.Count(p.Flags()))
	})

	mt.Run("not found", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch))

		_, err := s.Get(context.Background(), "M-404")
		assert.ErrorIs(t, err, ErrMerchantNotFound)
	})
}

func TestMerchantStore_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := NewMerchantProfile("M-1", User{ID: "U-1", Email: "ops@acme.test"}, time.Now())
		assert.NoError(t, s.Create(context.Background(), p))
	})

	mt.Run("duplicate", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		p := NewMerchantProfile("M-1", User{ID: "U-1"}, time.Now())
		assert.ErrorIs(t, s.Create(context.Background(), p), ErrMerchantExists)
	})
}

func TestMerchantStore_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("two profiles", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		second := merchantDoc(shared.StatusApproved, bson.D{})
		second[0] = bson.E{Key: "_id", Value: "M-2"}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch,
			merchantDoc(shared.StatusPending, bson.D{}),
			second,
		))

		profiles, err := s.List(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, profiles, 2)
		assert.Equal(t, "M-2", profiles[1].MerchantID)
		assert.Equal(t, shared.StatusApproved, profiles[1].OnboardingStatus)
	})

	mt.Run("empty", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch))

		profiles, err := s.List(context.Background(), shared.StatusRejected)
		require.NoError(t, err)
		assert.Empty(t, profiles)
	})
}

func TestMerchantStore_SaveStep(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	form := &shared.RiskManagement{BusinessCategory: "retail", MCC: "5311", RefundPolicy: "30 days"}

	mt.Run("created", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(updated(1))

		err := s.SaveStep(context.Background(), "M-1", completion.StepRiskManagement, form, SaveCreate)
		assert.NoError(t, err)
	})

	mt.Run("create on existing step", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(
			updated(0),
			mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch, merchantDoc(shared.StatusPending,
				bson.D{{Key: "riskmanagement", Value: true}},
				bson.E{Key: "riskmanagement", Value: bson.D{{Key: "mcc", Value: "5311"}}},
			)),
		)

		err := s.SaveStep(context.Background(), "M-1", completion.StepRiskManagement, form, SaveCreate)
		assert.ErrorIs(t, err, ErrStepExists)
	})

	mt.Run("replace on missing step", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(
			updated(0),
			mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch, merchantDoc(shared.StatusPending, bson.D{})),
		)

		err := s.SaveStep(context.Background(), "M-1", completion.StepRiskManagement, form, SaveReplace)
		assert.ErrorIs(t, err, ErrStepNotFound)
	})

	mt.Run("after decision", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(
			updated(0),
			mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch, merchantDoc(shared.StatusRejected, bson.D{})),
		)

		err := s.SaveStep(context.Background(), "M-1", completion.StepRiskManagement, form, SaveReplace)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
	})

	mt.Run("payments disabled", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(
			updated(0),
			mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch, merchantDoc(shared.StatusPending, bson.D{},
				bson.E{Key: "paymentsDisabled", Value: true},
			)),
		)

		err := s.SaveStep(context.Background(), "M-1", completion.StepRiskManagement, form, SaveCreate)
		assert.ErrorIs(t, err, ErrPaymentsDisabled)
	})

	mt.Run("unknown merchant", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(updated(0), mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch))

		err := s.SaveStep(context.Background(), "M-404", completion.StepRiskManagement, form, SaveCreate)
		assert.ErrorIs(t, err, ErrMerchantNotFound)
	})

	mt.Run("unknown step", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		err := s.SaveStep(context.Background(), "M-1", "bankstatement", form, SaveCreate)
		assert.ErrorIs(t, err, ErrUnknownStep)
	})
}

func TestMerchantStore_Decide(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	approve := shared.ReviewDecision{Decision: shared.DecisionApprove, ReviewerID: "A-1", DecidedAt: time.Now()}

	mt.Run("approved", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(updated(1))
		assert.NoError(t, s.Decide(context.Background(), "M-1", approve))
	})

	mt.Run("incomplete steps", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(
			updated(0),
			mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch,
				merchantDoc(shared.StatusPending, bson.D{{Key: "ubo", Value: true}})),
		)
		assert.ErrorIs(t, s.Decide(context.Background(), "M-1", approve), ErrNotApprovable)
	})

	mt.Run("payments disabled", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(
			updated(0),
			mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch,
				merchantDoc(shared.StatusPending, bson.D{}, bson.E{Key: "paymentsDisabled", Value: true})),
		)
		assert.ErrorIs(t, s.Decide(context.Background(), "M-1", approve), ErrPaymentsDisabled)
	})

	mt.Run("already decided", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(
			updated(0),
			mtest.CreateCursorResponse(0, merchantsNS, mtest.FirstBatch,
				merchantDoc(shared.StatusApproved, bson.D{})),
		)
		reject := shared.ReviewDecision{Decision: shared.DecisionReject, Reason: "duplicate"}
		assert.ErrorIs(t, s.Decide(context.Background(), "M-1", reject), ErrAlreadyDecided)
	})
}

func TestMerchantStore_Flags(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("disable payments", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(updated(1))
		assert.NoError(t, s.DisablePayments(context.Background(), "M-1"))
	})

	mt.Run("screening on unknown merchant", func(mt *mtest.T) {
		s := NewMerchantStore(mt.DB)
		mt.AddMockResponses(updated(0))
		err := s.SetScreening(context.Background(), "M-404", shared.VerificationResult{Passed: true})
		assert.ErrorIs(t, err, ErrMerchantNotFound)
	})
}

func TestMerchantProfile_HasStep(t *testing.T) {
	p := NewMerchantProfile("M-1", User{ID: "U-1"}, time.Now())
	assert.False(t, p.HasStep(completion.StepUBO))
	assert.Len(t, p.CompletionSummary, completion.TotalSteps)

	p.UBO = &shared.UBOInfo{}
	assert.True(t, p.HasStep(completion.StepUBO))
	assert.False(t, p.HasStep("nope"))
}
