package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/pkg/apperrors"
)

// MarkFunc marks one student work on behalf of a user
type MarkFunc func(ctx context.Context, userID, workID int64) error

// CleanupFunc deletes expired analytics and reports how many rows went
type CleanupFunc func(ctx context.Context) (int64, error)

// HandleMarkWork returns the asynq handler for TypeMarkWork
func HandleMarkWork(mark MarkFunc, logger zerolog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p MarkWorkPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode mark work payload: %v: %w", err, asynq.SkipRetry)
		}

		err := mark(ctx, p.UserID, p.WorkID)
		switch {
		case err == nil:
			logger.Info().Int64("workID", p.WorkID).Msg("Background marking completed")
			return nil
		case errors.Is(err, apperrors.ErrWorkAlreadyMarked):
			logger.Info().Int64("workID", p.WorkID).Msg("Work already marked, skipping task")
			return nil
		case apperrors.IsNotFound(err), errors.Is(err, apperrors.ErrMarkingDisabled), errors.Is(err, apperrors.ErrPermissionDenied):
			logger.Warn().Err(err).Int64("workID", p.WorkID).Msg("Marking task cannot succeed, not retrying")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		default:
			logger.Error().Err(err).Int64("workID", p.WorkID).Msg("Background marking failed")
			return err
		}
	}
}

// HandleAnalyticsCleanup returns the asynq handler for TypeAnalyticsCleanup
func HandleAnalyticsCleanup(cleanup CleanupFunc, logger zerolog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		deleted, err := cleanup(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Analytics cleanup failed")
			return err
		}
		logger.Info().Int64("deleted", deleted).Msg("Analytics cleanup finished")
		return nil
	}
}

// RunCleanupLoop runs cleanup every interval until ctx is done. It is used
// when no task queue is configured.
func RunCleanupLoop(ctx context.Context, interval time.Duration, cleanup CleanupFunc, logger zerolog.Logger) {
	handler := HandleAnalyticsCleanup(cleanup, logger)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = handler(ctx, nil)
		}
	}
}
