package shared

import (
	"fmt"
	"time"
)

// Task queue names.
const (
	OnboardingWorkflowTaskQueue = "onboarding-workflow-tq"
	ActivityTaskQueue           = "activity-tq"
)

// Signal and query names.
const (
	SignalStepCompleted   = "signal-step-completed"
	SignalReviewDecision  = "signal-review-decision"
	QueryOnboardingStatus = "query-onboarding-status"
)

// Compliance timeline constants.
const (
	ReminderDay30 = 30 * 24 * time.Hour
	ReminderDay60 = 60 * 24 * time.Hour
	DeadlineDay90 = 90 * 24 * time.Hour
)

// Error types for non-retryable failures.
const (
	ErrTypeDocumentRejected = "DocumentRejected"
	ErrTypeMerchantNotFound = "MerchantNotFound"
)

// Notification kinds sent to merchants.
const (
	NotificationDay30     = "day30"
	NotificationDay60     = "day60"
	NotificationApproved  = "onboardingApproved"
	NotificationRejected  = "onboardingRejected"
	NotificationSuspended = "paymentsDisabled"
)

// Roles carried by users and sessions.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// WorkflowID returns the onboarding workflow id for a merchant. The id doubles
// as an idempotency key: a merchant can only have one running onboarding.
func WorkflowID(merchantID string) string {
	return fmt.Sprintf("onboard-merchant-%s", merchantID)
}
