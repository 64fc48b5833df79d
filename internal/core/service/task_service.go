package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhq/task-manager-api/internal/core/domain"
	"github.com/taskhq/task-manager-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type TaskService struct {
	repo     ports.TaskRepository
	activity ports.ActivitySink // nil disables the activity feed
	log      zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, activity ports.ActivitySink, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, activity: activity, log: log}
}

// CreateTask creates a task owned by the caller. New tasks always start in todo.
func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	priority := domain.TaskPriority(input.Priority)
	if input.Priority == "" {
		priority = domain.PriorityMedium
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusTodo,
		Priority:    priority,
		DueDate:     input.DueDate,
		OwnerID:     input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create task")
		return nil, err
	}

	s.emit(created.ID, input.OwnerID, domain.ActionCreated, "task created")
	s.log.Info().Str("task_id", created.ID).Str("owner_id", created.OwnerID).Msg("task created")
	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, id)
}

// ListTasks returns a page of tasks. Non-admin callers are always scoped to
// their own tasks regardless of the requested filter.
func (s *TaskService) ListTasks(ctx context.Context, input ports.ListTasksInput) (*ports.ListTasksResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := ports.ListTasksFilter{
		OwnerID:  input.OwnerID,
		Status:   input.Status,
		Priority: input.Priority,
		Page:     page,
		Limit:    limit,
	}
	if input.IsAdmin {
		filter.OwnerID = ""
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListTasksResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateTask applies partial field updates. Status changes go through
// UpdateTaskStatus so the state machine is always enforced.
func (s *TaskService) UpdateTask(ctx context.Context, actorID string, input ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = domain.TaskPriority(*input.Priority)
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.emit(task.ID, actorID, domain.ActionUpdated, "task updated")
	return task, nil
}

// UpdateTaskStatus validates the transition against the task state machine
// before persisting.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, actorID, id string, status string) (*domain.Task, error) {
	next := domain.TaskStatus(status)
	if !domain.ValidStatus(next) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, status)
	}

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !task.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, task.Status, next)
	}

	prev := task.Status
	task.Status = next
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.emit(task.ID, actorID, domain.ActionStatusChanged, fmt.Sprintf("%s -> %s", prev, next))
	s.log.Info().Str("task_id", task.ID).Str("from", string(prev)).Str("to", string(next)).Msg("task status changed")
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, actorID, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.emit(id, actorID, domain.ActionDeleted, "task deleted")
	return nil
}

func (s *TaskService) emit(taskID, actorID string, action domain.ActivityAction, detail string) {
	if s.activity == nil {
		return
	}
	s.activity.Enqueue(ports.TaskActivityInput{
		TaskID:    taskID,
		ActorID:   actorID,
		Action:    string(action),
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}
