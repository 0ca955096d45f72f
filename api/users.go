package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"merchant-kyc-portal/auth"
	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/session"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	FullName string `json:"fullname" binding:"required,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Session session.Session `json:"session"`
}

// signup registers a merchant user, creates the empty profile and starts the
// onboarding workflow.
func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	ctx := c.Request.Context()
	log := logger.For(ctx, s.Log)

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	now := s.now().UTC()
	u := store.User{
		ID:           s.newID(),
		Email:        store.NormalizeEmail(req.Email),
		Name:         req.Name,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         shared.RoleUser,
		MerchantID:   s.newID(),
		CreatedAt:    now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.Merchants.Create(ctx, store.NewMerchantProfile(u.MerchantID, u, now)); err != nil {
		// Remove the user so the same email can sign up again.
		if derr := s.Users.Delete(ctx, u.ID); derr != nil {
			log.Error("Failed to remove user after profile creation failed",
				zap.String("userId", u.ID),
				zap.Error(derr),
			)
		}
		s.fail(c, err)
		return
	}

	runID, err := s.Engine.Start(ctx, shared.OnboardingRequest{Merchant: shared.MerchantInfo{
		MerchantID: u.MerchantID,
		Name:       u.Name,
		FullName:   u.FullName,
		Email:      u.Email,
	}})
	if err != nil {
		log.Error("Failed to start onboarding workflow", zap.String("merchantId", u.MerchantID), zap.Error(err))
	} else {
		log.Info("Onboarding workflow started", zap.String("merchantId", u.MerchantID), zap.String("runId", runID))
	}

	sess, err := s.openSession(c, u)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{Token: sess.Token, Session: sess})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	u, err := s.Users.GetByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		s.fail(c, errInvalidCredentials)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		s.fail(c, errInvalidCredentials)
		return
	}

	sess, err := s.openSession(c, u)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: sess.Token, Session: sess})
}

// openSession issues a token for u and stores the matching session.
func (s *Server) openSession(c *gin.Context, u store.User) (session.Session, error) {
	token, claims, err := s.Tokens.Issue(auth.Identity{
		UserID:     u.ID,
		Role:       u.Role,
		MerchantID: u.MerchantID,
		Name:       u.Name,
		Email:      u.Email,
	})
	if err != nil {
		return session.Session{}, err
	}
	sess := session.Session{
		ID:         claims.ID,
		UserID:     u.ID,
		Token:      token,
		FullName:   u.FullName,
		MerchantID: u.MerchantID,
		Role:       u.Role,
		Email:      u.Email,
		Name:       u.Name,
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	if err := s.Sessions.Save(c.Request.Context(), sess, s.Tokens.TTL()); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (s *Server) logout(c *gin.Context) {
	if err := s.Sessions.Clear(c.Request.Context(), sessionFrom(c).ID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *Server) currentSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c))
}
