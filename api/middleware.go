package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/session"
	"merchant-kyc-portal/shared"
)

const (
	requestIDHeader = "X-Request-ID"
	sessionKey      = "session"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.For(c.Request.Context(), log).Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// authenticate accepts a request only when its bearer token verifies and a
// live session exists for it. The session, not the token, is the identity
// handlers see.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.Tokens.Verify(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		sess, err := s.Sessions.Load(c.Request.Context(), claims.ID)
		if errors.Is(err, session.ErrNotFound) || (err == nil && sess.Token != token) {
			abort(c, http.StatusUnauthorized, "session expired")
			return
		}
		if err != nil {
			s.fail(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionFrom(c).Role != shared.RoleAdmin {
			abort(c, http.StatusForbidden, "administrator role required")
			return
		}
		c.Next()
	}
}

func sessionFrom(c *gin.Context) session.Session {
	sess, _ := c.MustGet(sessionKey).(session.Session)
	return sess
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
