package queue

import (
	"encoding/json"
	"strconv"

	"github.com/hibiken/asynq"
)

// Task types
const (
	TypeMarkWork         = "marking:mark_work"
	TypeAnalyticsCleanup = "analytics:cleanup"
)

// MarkWorkPayload identifies the work to mark and the user it is marked for
type MarkWorkPayload struct {
	WorkID int64 `json:"work_id"`
	UserID int64 `json:"user_id"`
}

// NewMarkWorkTask builds a marking task for a student work
func NewMarkWorkTask(workID, userID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(MarkWorkPayload{WorkID: workID, UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMarkWork, payload), nil
}

// MarkWorkTaskID is the unique task id for marking a work, so a work is
// queued at most once at a time
func MarkWorkTaskID(workID int64) string {
	return "mark-work-" + strconv.FormatInt(workID, 10)
}

// NewAnalyticsCleanupTask builds the retention cleanup task
func NewAnalyticsCleanupTask() *asynq.Task {
	return asynq.NewTask(TypeAnalyticsCleanup, nil)
}
