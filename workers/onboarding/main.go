package main

import (
	"log"

	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"merchant-kyc-portal/config"
	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/orchestrator"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/workflows"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}
	zl, err := logger.New(cfg.ServiceName+"-onboarding-worker", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Unable to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	c, err := orchestrator.Dial(cfg.Temporal, zl)
	if err != nil {
		zl.Fatal("Unable to create Temporal client", zap.Error(err))
	}
	defer c.Close()

	// Workflow tasks do no I/O, so the default worker options are enough.
	w := worker.New(c, shared.OnboardingWorkflowTaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.OnboardingWorkflow)
	w.RegisterWorkflow(workflows.DocumentScreeningWorkflow)

	zl.Info("Starting onboarding workflow worker", zap.String("taskQueue", shared.OnboardingWorkflowTaskQueue))
	if err := w.Run(worker.InterruptCh()); err != nil {
		zl.Fatal("Unable to start worker", zap.Error(err))
	}
}
