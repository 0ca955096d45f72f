package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"merchant-kyc-portal/api"
	"merchant-kyc-portal/auth"
	"merchant-kyc-portal/config"
	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/orchestrator"
	"merchant-kyc-portal/session"
	"merchant-kyc-portal/store"
	"merchant-kyc-portal/telemetry"
	"merchant-kyc-portal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if err := cfg.RequireUpload(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	zl, err := logger.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Unable to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OtelURL, zl)
	if err != nil {
		zl.Fatal("Unable to set up tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		zl.Fatal("Unable to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = db.Close(context.Background()) }()

	users := store.NewUserStore(db.Database)
	if err := users.EnsureIndexes(ctx); err != nil {
		zl.Fatal("Unable to create indexes", zap.Error(err))
	}

	rdb, err := session.Connect(ctx, cfg.Redis)
	if err != nil {
		zl.Fatal("Unable to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	tc, err := orchestrator.Dial(cfg.Temporal, zl)
	if err != nil {
		zl.Fatal("Unable to create Temporal client", zap.Error(err))
	}
	defer tc.Close()

	uploader, closeUploader, err := newUploader(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Unable to create uploader", zap.Error(err))
	}
	defer closeUploader()

	created, err := api.BootstrapAdmin(ctx, users, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		zl.Fatal("Unable to bootstrap administrator", zap.Error(err))
	}
	if created {
		zl.Info("Administrator created", zap.String("email", cfg.Auth.AdminEmail))
	}

	srv := api.NewServer(api.Deps{
		Users:          users,
		Merchants:      store.NewMerchantStore(db.Database),
		Sessions:       session.NewRedisStore(rdb),
		Tokens:         auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Engine:         orchestrator.New(tc),
		Uploader:       uploader,
		Log:            zl,
		ServiceName:    cfg.ServiceName,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zl.Info("Starting portal", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Portal server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("Shutting down portal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newUploader returns the configured document store and its cleanup.
func newUploader(ctx context.Context, cfg config.Config, zl *zap.Logger) (upload.Uploader, func(), error) {
	if cfg.Upload.Backend == config.UploadBackendGCS {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		return upload.NewGCSUploader(client, cfg.Upload.GCSBucket, cfg.Upload.MaxBytes), func() { _ = client.Close() }, nil
	}
	return upload.NewHostUploader(cfg.Upload, zl), func() {}, nil
}
