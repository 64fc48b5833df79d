package ports

import (
	"context"
	"time"

	"github.com/taskhq/task-manager-api/internal/core/domain"
)

// TaskActivityInput is the DTO handed from the task service to the activity
// pipeline.
type TaskActivityInput struct {
	TaskID    string
	ActorID   string
	Action    string
	Detail    string
	Timestamp time.Time
}

// ActivityRepository persists and reads the task activity feed.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.TaskActivity) error
	ListByTask(ctx context.Context, taskID string, limit int) ([]*domain.TaskActivity, error)
}

// ActivityService processes incoming activity records.
type ActivityService interface {
	Process(ctx context.Context, activity TaskActivityInput) error
	ListByTask(ctx context.Context, taskID string, limit int) ([]*domain.TaskActivity, error)
}

// ActivitySink is how the task service emits activity without blocking the
// request path; the queue dispatcher implements it.
type ActivitySink interface {
	Enqueue(activity TaskActivityInput)
}
