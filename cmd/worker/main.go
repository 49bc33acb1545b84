package main

import (
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/Vamsibolem10/Mini-Researcher/internal/config"
	"github.com/Vamsibolem10/Mini-Researcher/internal/remote"
	"github.com/Vamsibolem10/Mini-Researcher/internal/workflows"
)

var (
	loadConfig    = config.Load
	newLogger     = zap.NewProduction
	dialTemporal  = client.Dial
	newActivities = func(cfg config.Config, logger *zap.Logger) *workflows.Activities {
		return workflows.NewActivities(remote.NewClient(remote.Config{
			BaseURL: cfg.ServiceURL,
			Logger:  logger,
		}))
	}
	newWorker       = worker.New
	workerInterrupt = worker.InterruptCh
)

func main() {
	if err := run(); err != nil {
		zap.Must(zap.NewProduction()).Fatal("worker exited", zap.Error(err))
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	temporalClient, err := dialTemporal(client.Options{
		HostPort: cfg.TemporalAddress,
	})
	if err != nil {
		return err
	}
	if temporalClient != nil {
		defer temporalClient.Close()
	}

	activities := newActivities(cfg, logger)

	w := newWorker(temporalClient, cfg.TemporalTaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ResearchWorkflow)
	w.RegisterActivityWithOptions(activities.SubmitResearch, activity.RegisterOptions{
		Name: workflows.SubmitResearchActivity,
	})

	logger.Info("research worker started",
		zap.String("task_queue", cfg.TemporalTaskQueue),
		zap.String("service_url", cfg.ServiceURL),
	)
	if err := w.Run(workerInterrupt()); err != nil {
		return err
	}

	return nil
}
