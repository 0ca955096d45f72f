package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"merchant-kyc-portal/auth"
	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/orchestrator"
	"merchant-kyc-portal/session"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
	"merchant-kyc-portal/upload"
)

var errInvalidCredentials = errors.New("invalid email or password")

var errorStatus = []struct {
	err    error
	status int
}{
	{store.ErrMerchantNotFound, http.StatusNotFound},
	{store.ErrStepNotFound, http.StatusNotFound},
	{orchestrator.ErrWorkflowNotFound, http.StatusNotFound},
	{store.ErrStepExists, http.StatusConflict},
	{store.ErrMerchantExists, http.StatusConflict},
	{store.ErrEmailTaken, http.StatusConflict},
	{store.ErrAlreadyDecided, http.StatusConflict},
	{store.ErrNotApprovable, http.StatusUnprocessableEntity},
	{store.ErrUnknownStep, http.StatusBadRequest},
	{shared.ErrInvalidForm, http.StatusBadRequest},
	{store.ErrPaymentsDisabled, http.StatusConflict},
	{auth.ErrPasswordTooLong, http.StatusBadRequest},
	{errInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrExpiredToken, http.StatusUnauthorized},
	{session.ErrNotFound, http.StatusUnauthorized},
	{upload.ErrEmpty, http.StatusBadRequest},
	{upload.ErrInvalidType, http.StatusUnsupportedMediaType},
	{upload.ErrTooLarge, http.StatusRequestEntityTooLarge},
	{upload.ErrRejected, http.StatusUnprocessableEntity},
	{upload.ErrUnavailable, http.StatusBadGateway},
}

// fail writes the status and message for err. Unknown errors are logged and
// reported as a generic 500.
func (s *Server) fail(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			message := err.Error()
			if e.err == upload.ErrUnavailable {
				message = "file host unavailable, try again later"
			}
			c.JSON(e.status, gin.H{"message": message})
			return
		}
	}
	logger.For(c.Request.Context(), s.Log).Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

// invalid writes a 400 for a binding failure, listing field errors when the
// body decoded but did not validate.
func invalid(c *gin.Context, err error) {
	body := gin.H{"message": "validation failed"}
	if fields := fieldErrors(err); fields != nil {
		body["errors"] = fields
	} else {
		body["message"] = "malformed request body"
	}
	c.JSON(http.StatusBadRequest, body)
}
