// Package completion derives a merchant's onboarding progress from the six
// step-completion flags. It is the single home of the step list and the
// progress thresholds; nothing else in the repository re-declares them.
package completion

import "math"

// Step names one onboarding form. The string values are the keys used in the
// stored completion summary and on the wire, misspellings included.
type Step string

const (
	StepCompanyInformation Step = "companyinformation"
	StepUBO                Step = "ubo"
	StepPaymentProcessing  Step = "paymentandprosessing"
	StepSettlementBank     Step = "settlmentbankdetails"
	StepRiskManagement     Step = "riskmanagement"
	StepKYCDocs            Step = "kycdocs"
)

// Steps lists the onboarding steps in wizard order.
var Steps = []Step{
	StepCompanyInformation,
	StepUBO,
	StepPaymentProcessing,
	StepSettlementBank,
	StepRiskManagement,
	StepKYCDocs,
}

// TotalSteps is the number of onboarding steps, len(Steps).
const TotalSteps = 6

// InProgressThreshold is the number of completed steps at which a merchant
// moves from pending to in_progress.
const InProgressThreshold = 3

// Status is the coarse progress label shown on dashboards.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Flags maps a step to whether its form has been saved.
type Flags map[Step]bool

// Summary is the derived view of a set of flags.
type Summary struct {
	Completed  int    `json:"completed" bson:"completed"`
	Total      int    `json:"total" bson:"total"`
	Percent    int    `json:"percent" bson:"percent"`
	Status     Status `json:"status" bson:"status"`
	Approvable bool   `json:"approvable" bson:"approvable"`
}

// Valid reports whether s is one of the six known steps.
func (s Step) Valid() bool {
	for _, known := range Steps {
		if s == known {
			return true
		}
	}
	return false
}

// Index returns the wizard position of s, or -1 when s is unknown.
func (s Step) Index() int {
	for i, known := range Steps {
		if s == known {
			return i
		}
	}
	return -1
}

// Count returns how many of the six known steps are true. Unknown keys are
// ignored.
func Count(flags Flags) int {
	n := 0
	for _, s := range Steps {
		if flags[s] {
			n++
		}
	}
	return n
}

// Percent returns round(100 * completed / 6).
func Percent(flags Flags) int {
	return int(math.Round(100 * float64(Count(flags)) / float64(TotalSteps)))
}

// Approvable reports whether every step is complete. An approve action must
// not proceed otherwise.
func Approvable(flags Flags) bool {
	return Count(flags) == TotalSteps
}

// StatusOf labels a completed-step count.
func StatusOf(completed int) Status {
	switch {
	case completed >= TotalSteps:
		return StatusCompleted
	case completed >= InProgressThreshold:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// Summarize derives the percent, status and approval gate from flags. A nil
// or empty map yields 0% pending.
func Summarize(flags Flags) Summary {
	n := Count(flags)
	return Summary{
		Completed:  n,
		Total:      TotalSteps,
		Percent:    Percent(flags),
		Status:     StatusOf(n),
		Approvable: n == TotalSteps,
	}
}

// FromStrings converts a string-keyed map, as decoded from JSON or BSON, into
// Flags. Unknown keys are dropped.
func FromStrings(m map[string]bool) Flags {
	flags := make(Flags, TotalSteps)
	for _, s := range Steps {
		if m[string(s)] {
			flags[s] = true
		}
	}
	return flags
}

// ToStrings returns a string-keyed map holding an entry for every step.
func (f Flags) ToStrings() map[string]bool {
	m := make(map[string]bool, TotalSteps)
	for _, s := range Steps {
		m[string(s)] = f[s]
	}
	return m
}
