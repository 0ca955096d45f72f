package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

// saveStep binds and validates the step's form, stores it and tells the
// workflow. Nothing is stored when validation fails.
func (s *Server) saveStep(step completion.Step, mode store.SaveMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		merchantID := sessionFrom(c).MerchantID
		if merchantID == "" {
			c.JSON(http.StatusForbidden, gin.H{"message": "only merchant accounts submit onboarding forms"})
			return
		}

		form := shared.NewStepForm(step)
		if err := c.ShouldBindJSON(form); err != nil {
			invalid(c, err)
			return
		}
		if err := form.Validate(); err != nil {
			s.fail(c, err)
			return
		}

		ctx := c.Request.Context()
		if err := s.Merchants.SaveStep(ctx, merchantID, step, form, mode); err != nil {
			s.fail(c, err)
			return
		}

		signal := shared.StepCompletion{Step: step}
		if docs, ok := form.(*shared.KYCDocs); ok {
			signal.Documents = docs.Documents
		}
		if err := s.Engine.StepCompleted(ctx, merchantID, signal); err != nil {
			logger.For(ctx, s.Log).Warn("Failed to signal step completion",
				zap.String("merchantId", merchantID),
				zap.String("step", string(step)),
				zap.Error(err),
			)
		}

		p, err := s.Merchants.Get(ctx, merchantID)
		if err != nil {
			s.fail(c, err)
			return
		}

		status := http.StatusOK
		if mode == store.SaveCreate {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{
			"message":           "saved",
			"step":              step,
			"completionSummary": p.CompletionSummary,
			"progress":          completion.Summarize(p.Flags()),
		})
	}
}
