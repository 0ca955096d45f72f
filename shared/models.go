package shared

import (
	"time"

	"merchant-kyc-portal/completion"
)

// OnboardingStatus is the administrator's verdict on a merchant. It is
// independent of the step flags: a fully complete merchant can still be
// pending.
type OnboardingStatus string

const (
	StatusPending  OnboardingStatus = "pending"
	StatusApproved OnboardingStatus = "approved"
	StatusRejected OnboardingStatus = "rejected"
)

// Valid reports whether s is a known onboarding status.
func (s OnboardingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Phase is where the onboarding workflow currently is.
type Phase string

const (
	PhaseCollecting       Phase = "COLLECTING_FORMS"
	PhaseScreening        Phase = "SCREENING_DOCUMENTS"
	PhaseAwaitingReview   Phase = "AWAITING_REVIEW"
	PhaseDecided          Phase = "DECIDED"
	PhasePaymentsDisabled Phase = "PAYMENTS_DISABLED"
)

// OnboardingStatusResponse is returned by the query handler.
type OnboardingStatusResponse struct {
	Status        OnboardingStatus    `json:"onboardingStatus"`
	Phase         Phase               `json:"phase"`
	Flags         map[string]bool     `json:"completionSummary"`
	Progress      completion.Summary  `json:"progress"`
	DaysRemaining int                 `json:"daysRemaining"`
	Screening     *VerificationResult `json:"screening,omitempty"`
}

// MerchantInfo contains the merchant's registration details.
type MerchantInfo struct {
	MerchantID string `json:"merchantId"`
	Name       string `json:"name"`
	FullName   string `json:"fullname"`
	Email      string `json:"email"`
}

// OnboardingRequest is the input to the OnboardingWorkflow.
type OnboardingRequest struct {
	Merchant MerchantInfo `json:"merchant"`
}

// NotificationRequest is the input to the SendNotification activity.
type NotificationRequest struct {
	MerchantID string `json:"merchantId"`
	Email      string `json:"email"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason,omitempty"`
}

// StepCompletion is signalled to the workflow each time a step form is saved.
type StepCompletion struct {
	Step      completion.Step `json:"step"`
	Documents []KYCDocument   `json:"documents,omitempty"`
}

// Decision is an administrator's review action.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status returns the onboarding status a decision leads to.
func (d Decision) Status() OnboardingStatus {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// ReviewDecision is the payload of an approve or reject action.
type ReviewDecision struct {
	Decision   Decision  `json:"decision" bson:"decision"`
	Reason     string    `json:"reason,omitempty" bson:"reason,omitempty"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
	ReviewerID string    `json:"reviewerId" bson:"reviewerId"`
	DecidedAt  time.Time `json:"decidedAt" bson:"decidedAt"`
}

// DocumentUpload represents one document reference submitted by the merchant.
type DocumentUpload struct {
	MerchantID   string `json:"merchantId"`
	DocumentType string `json:"documentType"`
	URL          string `json:"url"`
}

// ScreeningRequest is the input to the DocumentScreeningWorkflow.
type ScreeningRequest struct {
	MerchantID string        `json:"merchantId"`
	Documents  []KYCDocument `json:"documents"`
}

// VerificationResult is the output from verification activities.
type VerificationResult struct {
	Passed         bool      `json:"passed" bson:"passed"`
	VerificationID string    `json:"verificationId" bson:"verificationId"`
	Details        string    `json:"details" bson:"details"`
	CheckedAt      time.Time `json:"checkedAt,omitempty" bson:"checkedAt,omitempty"`
}
