// Package orchestrator drives merchant onboarding workflows from the portal
// and the admin console.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"merchant-kyc-portal/config"
	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/workflows"
)

// ErrWorkflowNotFound means the merchant has no onboarding workflow.
var ErrWorkflowNotFound = errors.New("onboarding workflow not found")

// Dial connects to the Temporal server, logging through log.
func Dial(cfg config.TemporalConfig, log *zap.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    logger.NewTemporalLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal %s: %w", cfg.HostPort, err)
	}
	return c, nil
}

type Orchestrator struct {
	client client.Client
}

func New(c client.Client) *Orchestrator {
	return &Orchestrator{client: c}
}

// Start launches the onboarding workflow for a merchant. The workflow id is
// derived from the merchant id, so a second start for a running merchant
// fails instead of duplicating it.
func (o *Orchestrator) Start(ctx context.Context, req shared.OnboardingRequest) (string, error) {
	run, err := o.client.ExecuteWorkflow(ctx,
		client.StartWorkflowOptions{
			ID:        shared.WorkflowID(req.Merchant.MerchantID),
			TaskQueue: shared.OnboardingWorkflowTaskQueue,
		},
		workflows.OnboardingWorkflow,
		req,
	)
	if err != nil {
		return "", fmt.Errorf("start onboarding for merchant %s: %w", req.Merchant.MerchantID, err)
	}
	return run.GetRunID(), nil
}

// StepCompleted tells the workflow a step form was saved.
func (o *Orchestrator) StepCompleted(ctx context.Context, merchantID string, s shared.StepCompletion) error {
	return o.signal(ctx, merchantID, shared.SignalStepCompleted, s)
}

// Decide forwards a review decision to the workflow.
func (o *Orchestrator) Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) error {
	return o.signal(ctx, merchantID, shared.SignalReviewDecision, d)
}

func (o *Orchestrator) signal(ctx context.Context, merchantID, name string, arg any) error {
	if err := o.client.SignalWorkflow(ctx, shared.WorkflowID(merchantID), "", name, arg); err != nil {
		return wrapNotFound(merchantID, err)
	}
	return nil
}

// Status queries the live workflow state.
func (o *Orchestrator) Status(ctx context.Context, merchantID string) (shared.OnboardingStatusResponse, error) {
	var resp shared.OnboardingStatusResponse
	val, err := o.client.QueryWorkflow(ctx, shared.WorkflowID(merchantID), "", shared.QueryOnboardingStatus)
	if err != nil {
		return resp, wrapNotFound(merchantID, err)
	}
	if err := val.Get(&resp); err != nil {
		return resp, fmt.Errorf("decode onboarding status: %w", err)
	}
	return resp, nil
}

// Result blocks until the workflow finishes and returns its outcome.
func (o *Orchestrator) Result(ctx context.Context, merchantID string) (string, error) {
	var result string
	if err := o.client.GetWorkflow(ctx, shared.WorkflowID(merchantID), "").Get(ctx, &result); err != nil {
		return "", wrapNotFound(merchantID, err)
	}
	return result, nil
}

func wrapNotFound(merchantID string, err error) error {
	var nf *serviceerror.NotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: merchant %s", ErrWorkflowNotFound, merchantID)
	}
	return fmt.Errorf("onboarding workflow for merchant %s: %w", merchantID, err)
}
