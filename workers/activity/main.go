package main

import (
	"context"
	"log"

	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"merchant-kyc-portal/activities"
	"merchant-kyc-portal/config"
	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/notify"
	"merchant-kyc-portal/orchestrator"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}
	zl, err := logger.New(cfg.ServiceName+"-activity-worker", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Unable to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	ctx := context.Background()

	c, err := orchestrator.Dial(cfg.Temporal, zl)
	if err != nil {
		zl.Fatal("Unable to create Temporal client", zap.Error(err))
	}
	defer c.Close()

	db, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		zl.Fatal("Unable to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = db.Close(context.Background()) }()

	var notifier notify.Notifier = notify.NewLogNotifier(zl)
	if cfg.PubSub.Enabled {
		topic, err := notify.NewTopic(ctx, cfg.PubSub.ProjectID, cfg.PubSub.Topic)
		if err != nil {
			zl.Fatal("Unable to create Pub/Sub publisher", zap.Error(err))
		}
		defer func() { _ = topic.Close() }()
		notifier = notify.NewPubSubNotifier(topic)
	}

	// MaxConcurrentActivityExecutionSize protects the database and the
	// notification topic; the defaults suit a single portal deployment.
	w := worker.New(c, shared.ActivityTaskQueue, worker.Options{})

	a := &activities.Activities{
		Merchants:           store.NewMerchantStore(db.Database),
		Notifier:            notifier,
		SanctionedCountries: cfg.SanctionedCountries,
	}
	w.RegisterActivity(a)

	zl.Info("Starting activity worker", zap.String("taskQueue", shared.ActivityTaskQueue))
	if err := w.Run(worker.InterruptCh()); err != nil {
		zl.Fatal("Unable to start worker", zap.Error(err))
	}
}
