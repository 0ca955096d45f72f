package workflows

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"merchant-kyc-portal/shared"
)

// DocumentScreeningWorkflow is a child workflow that checks every KYC document
// reference and then runs the internal checks. The result is advisory: a
// failed screening is returned, not raised, and the reviewer decides.
func DocumentScreeningWorkflow(ctx workflow.Context, req shared.ScreeningRequest) (shared.VerificationResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Document screening workflow started",
		"merchantId", req.MerchantID,
		"documents", len(req.Documents),
	)

	// Document checks may call out to a supplier, so they get more time and retries.
	supplierOpts := workflow.ActivityOptions{
		TaskQueue:           shared.ActivityTaskQueue,
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Second,
			NonRetryableErrorTypes: []string{shared.ErrTypeDocumentRejected},
		},
	}
	internalOpts := workflow.ActivityOptions{
		TaskQueue:           shared.ActivityTaskQueue,
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        2,
			NonRetryableErrorTypes: []string{shared.ErrTypeMerchantNotFound},
		},
	}

	failed := func(details string) shared.VerificationResult {
		return shared.VerificationResult{
			Passed:         false,
			VerificationID: fmt.Sprintf("SCREEN-FAIL-%s", req.MerchantID),
			Details:        details,
			CheckedAt:      workflow.Now(ctx).UTC(),
		}
	}

	if len(req.Documents) == 0 {
		return failed("no KYC documents submitted"), nil
	}

	// Step 1: check the documents in parallel.
	supplierCtx := workflow.WithActivityOptions(ctx, supplierOpts)
	futures := make([]workflow.Future, len(req.Documents))
	for i, d := range req.Documents {
		futures[i] = workflow.ExecuteActivity(supplierCtx, a.ValidateWithSupplier, shared.DocumentUpload{
			MerchantID:   req.MerchantID,
			DocumentType: d.Type,
			URL:          d.URL,
		})
	}
	var problems []string
	for i, f := range futures {
		var res shared.VerificationResult
		if err := f.Get(ctx, &res); err != nil {
			logger.Error("Document validation failed",
				"merchantId", req.MerchantID,
				"documentType", req.Documents[i].Type,
				"error", err,
			)
			problems = append(problems, fmt.Sprintf("%s: %v", req.Documents[i].Type, err))
		}
	}
	if len(problems) > 0 {
		return failed("Document validation failed: " + strings.Join(problems, "; ")), nil
	}

	// Step 2: internal checks.
	var internal shared.VerificationResult
	internalCtx := workflow.WithActivityOptions(ctx, internalOpts)
	if err := workflow.ExecuteActivity(internalCtx, a.PerformInternalVerifications, req.MerchantID).Get(ctx, &internal); err != nil {
		logger.Error("Internal verifications failed", "merchantId", req.MerchantID, "error", err)
		return failed(fmt.Sprintf("Internal verifications failed: %v", err)), nil
	}
	if !internal.Passed {
		return failed(internal.Details), nil
	}

	return shared.VerificationResult{
		Passed:         true,
		VerificationID: fmt.Sprintf("SCREEN-%s", req.MerchantID),
		Details:        fmt.Sprintf("%d documents verified, %s", len(req.Documents), internal.Details),
		CheckedAt:      workflow.Now(ctx).UTC(),
	}, nil
}
