package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merchant-kyc-portal/shared"
)

type decisionRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
	Notes  string `json:"notes" binding:"max=4000"`
}

func (s *Server) decide(decision shared.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req decisionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				invalid(c, err)
				return
			}
		}
		merchantID := c.Param("id")

		d, err := s.reviews.Decide(c.Request.Context(), merchantID, shared.ReviewDecision{
			Decision:   decision,
			Reason:     req.Reason,
			Notes:      req.Notes,
			ReviewerID: sessionFrom(c).UserID,
			DecidedAt:  s.now().UTC(),
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":          "merchant " + string(d.Decision.Status()),
			"merchantId":       merchantID,
			"onboardingStatus": d.Decision.Status(),
			"review":           d,
		})
	}
}

func (s *Server) onboardingStatus(c *gin.Context) {
	resp, err := s.Engine.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
