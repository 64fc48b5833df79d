package ports

import (
	"context"

	"github.com/taskhq/task-manager-api/internal/core/domain"
)

// ListTasksFilter carries all query parameters for listing tasks.
// OwnerID is enforced by the service layer: non-admin callers only ever see
// their own tasks.
type ListTasksFilter struct {
	OwnerID  string // empty = no filter (admin); non-empty = scoped to owner
	Status   string // optional: filter by task status
	Priority string // optional: filter by priority
	Page     int    // 1-based
	Limit    int    // max rows per page (capped at 100 by service)
}

// TaskRepository defines persistence operations for tasks. OwnerOf doubles
// as the resource-lookup collaborator for the ownership authorization check.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, int64, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	OwnerOf(ctx context.Context, id string) (ownerID string, found bool, err error)
}
