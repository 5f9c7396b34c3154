package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// CleanupSchedule is the cron spec of the analytics retention task
const CleanupSchedule = "@daily"

// WorkerConfig configures the in-process asynq worker
type WorkerConfig struct {
	Redis       asynq.RedisClientOpt
	Concurrency int
}

// Worker processes marking and cleanup tasks and schedules the periodic cleanup
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    zerolog.Logger
}

// NewWorker creates a Worker with both task handlers registered
func NewWorker(cfg WorkerConfig, mark MarkFunc, cleanup CleanupFunc, logger zerolog.Logger) (*Worker, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	server := asynq.NewServer(cfg.Redis, asynq.Config{
		Concurrency: concurrency,
		Logger:      NewLogger(logger),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error().Err(err).Str("type", task.Type()).Msg("Task failed")
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeMarkWork, HandleMarkWork(mark, logger))
	mux.HandleFunc(TypeAnalyticsCleanup, HandleAnalyticsCleanup(cleanup, logger))

	scheduler := asynq.NewScheduler(cfg.Redis, &asynq.SchedulerOpts{Logger: NewLogger(logger)})
	if _, err := scheduler.Register(CleanupSchedule, NewAnalyticsCleanupTask()); err != nil {
		return nil, fmt.Errorf("failed to register analytics cleanup: %w", err)
	}

	return &Worker{server: server, scheduler: scheduler, mux: mux, logger: logger}, nil
}

// Start starts processing and scheduling in background goroutines
func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start task worker: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return fmt.Errorf("failed to start task scheduler: %w", err)
	}
	w.logger.Info().Msg("Task worker started")
	return nil
}

// Shutdown stops the scheduler and waits for running tasks
func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	w.logger.Info().Msg("Task worker stopped")
}
