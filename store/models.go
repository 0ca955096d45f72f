package store

import (
	"time"

	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/shared"
)

type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	FullName     string    `bson:"fullname" json:"fullname"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         string    `bson:"role" json:"role"`
	MerchantID   string    `bson:"merchantId,omitempty" json:"merchantId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// MerchantProfile is the accumulated onboarding data of one merchant. Step
// forms are stored under their step names; CompletionSummary holds the six
// flags keyed the same way.
type MerchantProfile struct {
	MerchantID string `bson:"_id" json:"merchantId"`
	UserID     string `bson:"userId" json:"userId"`
	Email      string `bson:"email" json:"email"`
	Name       string `bson:"name" json:"name"`
	FullName   string `bson:"fullname" json:"fullname"`

	CompanyInformation *shared.CompanyInformation `bson:"companyinformation,omitempty" json:"companyinformation,omitempty"`
	UBO                *shared.UBOInfo            `bson:"ubo,omitempty" json:"ubo,omitempty"`
	PaymentInfo        *shared.PaymentInfo        `bson:"paymentandprosessing,omitempty" json:"paymentandprosessing,omitempty"`
	SettlementBank     *shared.SettlementBank     `bson:"settlmentbankdetails,omitempty" json:"settlmentbankdetails,omitempty"`
	RiskManagement     *shared.RiskManagement     `bson:"riskmanagement,omitempty" json:"riskmanagement,omitempty"`
	KYCDocs            *shared.KYCDocs            `bson:"kycdocs,omitempty" json:"kycdocs,omitempty"`

	CompletionSummary map[string]bool           `bson:"completionSummary" json:"completionSummary"`
	OnboardingStatus  shared.OnboardingStatus   `bson:"onboardingStatus" json:"onboardingStatus"`
	Review            *shared.ReviewDecision     `bson:"review,omitempty" json:"review,omitempty"`
	Screening         *shared.VerificationResult `bson:"screening,omitempty" json:"screening,omitempty"`
	PaymentsDisabled  bool                       `bson:"paymentsDisabled" json:"paymentsDisabled"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewMerchantProfile returns a pending profile with every step flag false.
func NewMerchantProfile(merchantID string, u User, now time.Time) MerchantProfile {
	return MerchantProfile{
		MerchantID:        merchantID,
		UserID:            u.ID,
		Email:             u.Email,
		Name:              u.Name,
		FullName:          u.FullName,
		CompletionSummary: completion.Flags{}.ToStrings(),
		OnboardingStatus:  shared.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Flags returns the completion flags of the profile.
func (p MerchantProfile) Flags() completion.Flags {
	return completion.FromStrings(p.CompletionSummary)
}

// HasStep reports whether form data is stored for step.
func (p MerchantProfile) HasStep(step completion.Step) bool {
	switch step {
	case completion.StepCompanyInformation:
		return p.CompanyInformation != nil
	case completion.StepUBO:
		return p.UBO != nil
	case completion.StepPaymentProcessing:
		return p.PaymentInfo != nil
	case completion.StepSettlementBank:
		return p.SettlementBank != nil
	case completion.StepRiskManagement:
		return p.RiskManagement != nil
	case completion.StepKYCDocs:
		return p.KYCDocs != nil
	}
	return false
}
