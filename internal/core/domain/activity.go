package domain

import "time"

// ActivityAction names the kind of mutation recorded in a task's activity feed.
type ActivityAction string

const (
	ActionCreated       ActivityAction = "created"
	ActionUpdated       ActivityAction = "updated"
	ActionStatusChanged ActivityAction = "status_changed"
	ActionDeleted       ActivityAction = "deleted"
)

// TaskActivity is a single entry in a task's activity feed.
type TaskActivity struct {
	TaskID    string         `json:"task_id"`
	ActorID   string         `json:"actor_id"`
	Action    ActivityAction `json:"action"`
	Detail    string         `json:"detail,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
