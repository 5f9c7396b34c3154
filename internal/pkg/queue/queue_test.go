package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/assessai/internal/pkg/apperrors"
)

func TestNewMarkWorkTask(t *testing.T) {
	task, err := NewMarkWorkTask(12, 3)
	require.NoError(t, err)
	assert.Equal(t, TypeMarkWork, task.Type())

	var p MarkWorkPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, MarkWorkPayload{WorkID: 12, UserID: 3}, p)
	assert.Equal(t, "mark-work-12", MarkWorkTaskID(12))
}

func TestHandleMarkWork(t *testing.T) {
	task, err := NewMarkWorkTask(5, 9)
	require.NoError(t, err)

	tests := []struct {
		name      string
		markErr   error
		wantErr   bool
		skipRetry bool
	}{
		{name: "success", markErr: nil},
		{name: "already marked counts as success", markErr: apperrors.ErrWorkAlreadyMarked},
		{name: "missing rubric is not retried", markErr: apperrors.ErrRubricNotFound, wantErr: true, skipRetry: true},
		{name: "marking disabled is not retried", markErr: apperrors.ErrMarkingDisabled, wantErr: true, skipRetry: true},
		{name: "transient failure is retried", markErr: errors.New("storage unavailable"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser, gotWork int64
			handler := HandleMarkWork(func(ctx context.Context, userID, workID int64) error {
				gotUser, gotWork = userID, workID
				return tt.markErr
			}, zerolog.Nop())

			err := handler(context.Background(), task)
			assert.Equal(t, int64(9), gotUser)
			assert.Equal(t, int64(5), gotWork)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestHandleMarkWork_BadPayload(t *testing.T) {
	handler := HandleMarkWork(func(context.Context, int64, int64) error {
		t.Fatal("mark must not be called")
		return nil
	}, zerolog.Nop())

	err := handler(context.Background(), asynq.NewTask(TypeMarkWork, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestInlineEnqueuer_RunsMarking(t *testing.T) {
	var calls int32
	enqueuer := NewInlineEnqueuer(func(ctx context.Context, userID, workID int64) error {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, int64(4), workID)
		return nil
	}, zerolog.Nop())

	taskID, err := enqueuer.EnqueueMarkWork(context.Background(), 4, 1)
	require.NoError(t, err)
	assert.Empty(t, taskID)

	enqueuer.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRunCleanupLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs int32
	go RunCleanupLoop(ctx, 10*time.Millisecond, func(context.Context) (int64, error) {
		atomic.AddInt32(&runs, 1)
		return 0, nil
	}, zerolog.Nop())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, time.Second, 5*time.Millisecond)
}
