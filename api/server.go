// Package api is the portal's HTTP interface.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"merchant-kyc-portal/auth"
	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/review"
	"merchant-kyc-portal/session"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
	"merchant-kyc-portal/telemetry"
	"merchant-kyc-portal/upload"
)

type UserStore interface {
	Create(ctx context.Context, u store.User) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	Delete(ctx context.Context, id string) error
}

type MerchantStore interface {
	Create(ctx context.Context, p store.MerchantProfile) error
	Get(ctx context.Context, merchantID string) (store.MerchantProfile, error)
	List(ctx context.Context, status shared.OnboardingStatus) ([]store.MerchantProfile, error)
	SaveStep(ctx context.Context, merchantID string, step completion.Step, form shared.StepForm, mode store.SaveMode) error
	Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) error
}

// Engine is the onboarding workflow as seen from the HTTP layer.
type Engine interface {
	Start(ctx context.Context, req shared.OnboardingRequest) (string, error)
	StepCompleted(ctx context.Context, merchantID string, s shared.StepCompletion) error
	Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) error
	Status(ctx context.Context, merchantID string) (shared.OnboardingStatusResponse, error)
}

type Deps struct {
	Users          UserStore
	Merchants      MerchantStore
	Sessions       session.Store
	Tokens         *auth.Issuer
	Engine         Engine
	Uploader       upload.Uploader
	Log            *zap.Logger
	ServiceName    string
	MaxUploadBytes int64
}

type Server struct {
	Deps
	reviews *review.Service
	now     func() time.Time
	newID   func() string
}

// stepRoutes maps each step endpoint to the step it saves.
var stepRoutes = []struct {
	path string
	step completion.Step
}{
	{"/companyinfor", completion.StepCompanyInformation},
	{"/uboinfo", completion.StepUBO},
	{"/paymentinfo", completion.StepPaymentProcessing},
	{"/settlementbank", completion.StepSettlementBank},
	{"/riskmanagementinfo", completion.StepRiskManagement},
	{"/kycinfo", completion.StepKYCDocs},
}

func NewServer(d Deps) *Server {
	registerValidators()
	return &Server{
		Deps:    d,
		reviews: review.New(d.Merchants, d.Engine, d.Log),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Router builds the gin engine with every portal route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.MaxUploadBytes + 1<<20
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(s.ServiceName))
	r.Use(telemetry.MetricsMiddleware(otel.Meter(s.ServiceName)))
	r.Use(requestID())
	r.Use(accessLog(s.Log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.POST("/user/signup", s.signup)
	api.POST("/user/login", s.login)

	authed := api.Group("", s.authenticate())
	authed.POST("/user/logout", s.logout)
	authed.GET("/user/session", s.currentSession)
	authed.GET("/user/profile", s.profile)
	authed.GET("/user/form-status", s.formStatus)
	authed.POST("/upload", s.upload)
	for _, rt := range stepRoutes {
		authed.POST(rt.path, s.saveStep(rt.step, store.SaveCreate))
		authed.PUT(rt.path, s.saveStep(rt.step, store.SaveReplace))
	}

	admin := authed.Group("", requireAdmin())
	admin.GET("/user/profiles", s.profiles)
	admin.PUT("/admin/approve-merchant/:id", s.decide(shared.DecisionApprove))
	admin.PUT("/admin/reject-merchant/:id", s.decide(shared.DecisionReject))
	admin.GET("/admin/onboarding-status/:id", s.onboardingStatus)

	return r
}
