package domain

import (
	"errors"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusArchived   TaskStatus = "archived"
)

// TaskPriority orders tasks within a board.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// validTransitions defines the allowed status transitions.
var validTransitions = map[TaskStatus][]TaskStatus{
	StatusTodo:       {StatusInProgress, StatusArchived},
	StatusInProgress: {StatusTodo, StatusDone, StatusArchived},
	StatusDone:       {StatusInProgress, StatusArchived},
}

var ErrTaskNotFound = errors.New("task not found")
var ErrInvalidTransition = errors.New("invalid status transition")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s belongs to the closed status set.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

// Task is the core aggregate root. OwnerID references the user that created
// the task and drives the ownership authorization decision.
type Task struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	Status      TaskStatus   `json:"status" bson:"status"`
	Priority    TaskPriority `json:"priority" bson:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty" bson:"due_date,omitempty"`
	OwnerID     string       `json:"owner_id" bson:"owner_id"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}
