package ports

import (
	"context"
	"time"

	"github.com/taskhq/task-manager-api/internal/core/domain"
)

// CreateTaskInput carries all data needed to create a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	OwnerID     string
}

// UpdateTaskInput carries the mutable task fields. Nil pointers leave the
// corresponding field unchanged.
type UpdateTaskInput struct {
	ID          string
	Title       *string
	Description *string
	Priority    *string
	DueDate     *time.Time
}

// ListTasksInput carries all parameters for the list endpoint.
type ListTasksInput struct {
	OwnerID  string
	IsAdmin  bool
	Status   string
	Priority string
	Page     int
	Limit    int
}

// ListTasksResult is returned by ListTasks.
type ListTasksResult struct {
	Items      []*domain.Task
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TaskService defines use-case operations for tasks. Ownership authorization
// happens in middleware before these are called; ActorID identifies the
// caller for the activity feed.
type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, input ListTasksInput) (*ListTasksResult, error)
	UpdateTask(ctx context.Context, actorID string, input UpdateTaskInput) (*domain.Task, error)
	UpdateTaskStatus(ctx context.Context, actorID, id string, status string) (*domain.Task, error)
	DeleteTask(ctx context.Context, actorID, id string) error
}
