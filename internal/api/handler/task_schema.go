package handler

import (
	"time"

	"github.com/taskhq/task-manager-api/internal/core/domain"
)

// --- Request types ---

type createTaskRequest struct {
	Title       string     `json:"title"       validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

// updateTaskRequest uses pointers so absent fields are left untouched.
type updateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress done archived"`
}

// --- Response types ---
// Transport-owned so the JSON contract is not coupled to internal changes.

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OwnerID     string     `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listTasksResponse struct {
	Data       []taskResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type activityItemResponse struct {
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type activityFeedResponse struct {
	TaskID string                 `json:"task_id"`
	Items  []activityItemResponse `json:"items"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
