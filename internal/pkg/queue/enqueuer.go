package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// inlineMarkTimeout bounds a marking run started without a queue
const inlineMarkTimeout = 5 * time.Minute

// Enqueuer schedules background marking
type Enqueuer interface {
	// EnqueueMarkWork schedules marking of a work and returns the task id,
	// which is empty when the work is not tracked by a queue
	EnqueueMarkWork(ctx context.Context, workID, userID int64) (string, error)
}

// AsynqEnqueuer enqueues marking tasks on Redis through asynq
type AsynqEnqueuer struct {
	client   *asynq.Client
	maxRetry int
	logger   zerolog.Logger
}

// NewAsynqEnqueuer creates an AsynqEnqueuer
func NewAsynqEnqueuer(client *asynq.Client, maxRetry int, logger zerolog.Logger) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client, maxRetry: maxRetry, logger: logger}
}

// EnqueueMarkWork implements Enqueuer. A work that is already queued keeps its
// existing task.
func (e *AsynqEnqueuer) EnqueueMarkWork(ctx context.Context, workID, userID int64) (string, error) {
	task, err := NewMarkWorkTask(workID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to create mark work task: %w", err)
	}

	taskID := MarkWorkTaskID(workID)
	_, err = e.client.EnqueueContext(ctx, task, asynq.TaskID(taskID), asynq.MaxRetry(e.maxRetry))
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			e.logger.Debug().Str("taskID", taskID).Msg("Mark work task already queued")
			return taskID, nil
		}
		e.logger.Error().Err(err).Str("taskID", taskID).Msg("Failed to enqueue mark work task")
		return "", fmt.Errorf("failed to enqueue mark work task: %w", err)
	}

	e.logger.Info().Str("taskID", taskID).Int64("workID", workID).Msg("Mark work task enqueued")
	return taskID, nil
}

// InlineEnqueuer runs marking in a background goroutine of this process
type InlineEnqueuer struct {
	mark   MarkFunc
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// NewInlineEnqueuer creates an InlineEnqueuer around mark
func NewInlineEnqueuer(mark MarkFunc, logger zerolog.Logger) *InlineEnqueuer {
	return &InlineEnqueuer{mark: mark, logger: logger}
}

// EnqueueMarkWork implements Enqueuer. The request context is not used by the
// background run.
func (e *InlineEnqueuer) EnqueueMarkWork(_ context.Context, workID, userID int64) (string, error) {
	handler := HandleMarkWork(e.mark, e.logger)
	task, err := NewMarkWorkTask(workID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to create mark work task: %w", err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), inlineMarkTimeout)
		defer cancel()
		_ = handler(ctx, task)
	}()
	return "", nil
}

// Wait blocks until every started marking run has returned
func (e *InlineEnqueuer) Wait() {
	e.wg.Wait()
}
