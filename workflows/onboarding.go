package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/shared"
)

// onboardingWorkflow holds workflow state and provides methods for each phase
// of the onboarding process.
type onboardingWorkflow struct {
	// Business state
	phase     shared.Phase
	flags     completion.Flags
	documents []shared.KYCDocument
	decision  *shared.ReviewDecision
	screening *shared.VerificationResult
	startTime time.Time

	// Workflow context
	req    shared.OnboardingRequest
	logger log.Logger
	actCtx workflow.Context
}

// newOnboardingWorkflow initializes the workflow struct, registers the query
// handler and sets up activity options.
func newOnboardingWorkflow(ctx workflow.Context, req shared.OnboardingRequest) (*onboardingWorkflow, error) {
	w := &onboardingWorkflow{
		phase:     shared.PhaseCollecting,
		flags:     completion.Flags{},
		startTime: workflow.Now(ctx),
		req:       req,
		logger:    workflow.GetLogger(ctx),
	}

	err := workflow.SetQueryHandler(ctx, shared.QueryOnboardingStatus, func() (shared.OnboardingStatusResponse, error) {
		elapsed := workflow.Now(ctx).Sub(w.startTime)
		daysRemaining := int((shared.DeadlineDay90 - elapsed).Hours() / 24)
		if daysRemaining < 0 {
			daysRemaining = 0
		}
		return shared.OnboardingStatusResponse{
			Status:        w.status(),
			Phase:         w.phase,
			Flags:         w.flags.ToStrings(),
			Progress:      completion.Summarize(w.flags),
			DaysRemaining: daysRemaining,
			Screening:     w.screening,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set query handler: %w", err)
	}

	w.actCtx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		TaskQueue:           shared.ActivityTaskQueue,
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{shared.ErrTypeMerchantNotFound},
		},
	})

	return w, nil
}

func (w *onboardingWorkflow) status() shared.OnboardingStatus {
	if w.decision == nil {
		return shared.StatusPending
	}
	return w.decision.Decision.Status()
}

func (w *onboardingWorkflow) merchantID() string {
	return w.req.Merchant.MerchantID
}

// listen drains both signal channels for the life of the workflow.
func (w *onboardingWorkflow) listen(ctx workflow.Context) {
	stepCh := workflow.GetSignalChannel(ctx, shared.SignalStepCompleted)
	decisionCh := workflow.GetSignalChannel(ctx, shared.SignalReviewDecision)

	workflow.Go(ctx, func(ctx workflow.Context) {
		for {
			selector := workflow.NewSelector(ctx)
			selector.AddReceive(stepCh, func(ch workflow.ReceiveChannel, _ bool) {
				var s shared.StepCompletion
				ch.Receive(ctx, &s)
				w.onStepCompleted(s)
			})
			selector.AddReceive(decisionCh, func(ch workflow.ReceiveChannel, _ bool) {
				var d shared.ReviewDecision
				ch.Receive(ctx, &d)
				w.onDecision(d)
			})
			selector.Select(ctx)
		}
	})
}

func (w *onboardingWorkflow) onStepCompleted(s shared.StepCompletion) {
	if !s.Step.Valid() {
		w.logger.Warn("Ignoring unknown step", "merchantId", w.merchantID(), "step", s.Step)
		return
	}
	w.flags[s.Step] = true
	if s.Step == completion.StepKYCDocs {
		w.documents = s.Documents
	}
	w.logger.Info("Step completed",
		"merchantId", w.merchantID(),
		"step", s.Step,
		"percent", completion.Percent(w.flags),
	)
}

// onDecision records the first valid decision. Approval before every step is
// complete is ignored.
func (w *onboardingWorkflow) onDecision(d shared.ReviewDecision) {
	switch {
	case w.decision != nil:
		w.logger.Warn("Ignoring decision, merchant already decided",
			"merchantId", w.merchantID(),
			"decision", d.Decision,
		)
	case d.Decision == shared.DecisionApprove && !completion.Approvable(w.flags):
		w.logger.Warn("Ignoring approval, onboarding incomplete",
			"merchantId", w.merchantID(),
			"percent", completion.Percent(w.flags),
		)
	case d.Decision != shared.DecisionApprove && d.Decision != shared.DecisionReject:
		w.logger.Warn("Ignoring unknown decision", "merchantId", w.merchantID(), "decision", d.Decision)
	default:
		w.decision = &d
		w.logger.Info("Review decision received",
			"merchantId", w.merchantID(),
			"decision", d.Decision,
			"reviewerId", d.ReviewerID,
		)
	}
}

func (w *onboardingWorkflow) complete() bool {
	return completion.Approvable(w.flags)
}

// waitForSteps sends reminders at each milestone until every step is complete
// or a decision arrives. It reports false when the deadline passes first.
func (w *onboardingWorkflow) waitForSteps(ctx workflow.Context) (bool, error) {
	milestones := []struct {
		at   time.Duration
		kind string
	}{
		{shared.ReminderDay30, shared.NotificationDay30},
		{shared.ReminderDay60, shared.NotificationDay60},
		{shared.DeadlineDay90, ""},
	}

	for _, m := range milestones {
		remaining := m.at - workflow.Now(ctx).Sub(w.startTime)
		ok, err := workflow.AwaitWithTimeout(ctx, remaining, func() bool {
			return w.decision != nil || w.complete()
		})
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if m.kind != "" {
			w.notify(ctx, m.kind, "")
		}
	}
	return false, nil
}

// notify sends a notification. A failed notification never blocks onboarding.
func (w *onboardingWorkflow) notify(ctx workflow.Context, kind, reason string) {
	req := shared.NotificationRequest{
		MerchantID: w.merchantID(),
		Email:      w.req.Merchant.Email,
		Kind:       kind,
		Reason:     reason,
	}
	var id string
	if err := workflow.ExecuteActivity(w.actCtx, a.SendNotification, req).Get(ctx, &id); err != nil {
		w.logger.Error("Failed to send notification", "kind", kind, "error", err)
		return
	}
	w.logger.Info("Notification sent", "kind", kind, "notificationId", id)
}

// disablePayments handles a merchant who missed the 90-day deadline.
func (w *onboardingWorkflow) disablePayments(ctx workflow.Context) (string, error) {
	w.logger.Info("Onboarding deadline expired, disabling payments", "merchantId", w.merchantID())
	w.phase = shared.PhasePaymentsDisabled

	if err := workflow.ExecuteActivity(w.actCtx, a.DisablePayments, w.merchantID()).Get(ctx, nil); err != nil {
		return "", fmt.Errorf("failed to disable payments: %w", err)
	}
	w.notify(ctx, shared.NotificationSuspended, "onboarding not completed within 90 days")

	return fmt.Sprintf("ONBOARD-%s-PAYMENTS-DISABLED", w.merchantID()), nil
}

// runScreening screens the submitted documents in a child workflow and stores
// the result for reviewers.
func (w *onboardingWorkflow) runScreening(ctx workflow.Context) error {
	w.logger.Info("All steps complete, screening documents", "merchantId", w.merchantID())
	w.phase = shared.PhaseScreening

	childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
		WorkflowID: fmt.Sprintf("kyc-screen-%s", w.merchantID()),
		TaskQueue:  shared.OnboardingWorkflowTaskQueue,
	})

	var result shared.VerificationResult
	req := shared.ScreeningRequest{MerchantID: w.merchantID(), Documents: w.documents}
	if err := workflow.ExecuteChildWorkflow(childCtx, DocumentScreeningWorkflow, req).Get(ctx, &result); err != nil {
		return fmt.Errorf("document screening child workflow failed: %w", err)
	}
	w.screening = &result

	if err := workflow.ExecuteActivity(w.actCtx, a.RecordScreening, w.merchantID(), result).Get(ctx, nil); err != nil {
		w.logger.Error("Failed to record screening result", "merchantId", w.merchantID(), "error", err)
	}
	return nil
}

// finish notifies the merchant of the review decision.
func (w *onboardingWorkflow) finish(ctx workflow.Context) (string, error) {
	w.phase = shared.PhaseDecided

	if w.decision.Decision == shared.DecisionApprove {
		w.logger.Info("Onboarding approved", "merchantId", w.merchantID())
		w.notify(ctx, shared.NotificationApproved, "")
		return fmt.Sprintf("ONBOARD-%s-APPROVED", w.merchantID()), nil
	}

	w.logger.Info("Onboarding rejected", "merchantId", w.merchantID(), "reason", w.decision.Reason)
	w.notify(ctx, shared.NotificationRejected, w.decision.Reason)
	return fmt.Sprintf("ONBOARD-%s-REJECTED", w.merchantID()), nil
}

// OnboardingWorkflow tracks one merchant from signup to a review decision.
//
// Timeline:
//
//	Day 0  → Workflow starts at signup
//	Day 30 → Reminder if steps are incomplete
//	Day 60 → Reminder if steps are incomplete
//	Day 90 → Deadline: if steps are incomplete and undecided, disable payments
//
// Once all six steps are complete the documents are screened in a child
// workflow and the workflow waits for the administrator's decision. A
// rejection may arrive at any point before that.
func OnboardingWorkflow(ctx workflow.Context, req shared.OnboardingRequest) (string, error) {
	w, err := newOnboardingWorkflow(ctx, req)
	if err != nil {
		return "", err
	}
	w.listen(ctx)

	w.logger.Info("Onboarding workflow started", "merchantId", req.Merchant.MerchantID)

	// Phase 1: collect forms with reminders until the deadline.
	inTime, err := w.waitForSteps(ctx)
	if err != nil {
		return "", err
	}
	if !inTime {
		return w.disablePayments(ctx)
	}

	// Phase 2: screen documents unless already decided.
	if w.decision == nil {
		if err := w.runScreening(ctx); err != nil {
			return "", err
		}
	}

	// Phase 3: wait for the review.
	if w.decision == nil {
		w.phase = shared.PhaseAwaitingReview
		if err := workflow.Await(ctx, func() bool { return w.decision != nil }); err != nil {
			return "", err
		}
	}
	return w.finish(ctx)
}
