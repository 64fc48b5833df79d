package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/taskhq/task-manager-api/internal/api/middleware"
	"github.com/taskhq/task-manager-api/internal/auth"
	"github.com/taskhq/task-manager-api/internal/core/domain"
	"github.com/taskhq/task-manager-api/internal/core/ports"
)

type stubTaskService struct {
	createFn       func(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error)
	getFn          func(ctx context.Context, id string) (*domain.Task, error)
	listFn         func(ctx context.Context, input ports.ListTasksInput) (*ports.ListTasksResult, error)
	updateFn       func(ctx context.Context, actorID string, input ports.UpdateTaskInput) (*domain.Task, error)
	updateStatusFn func(ctx context.Context, actorID, id, status string) (*domain.Task, error)
	deleteFn       func(ctx context.Context, actorID, id string) error
}

func (s *stubTaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, input)
}

func (s *stubTaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.getFn(ctx, id)
}

func (s *stubTaskService) ListTasks(ctx context.Context, input ports.ListTasksInput) (*ports.ListTasksResult, error) {
	return s.listFn(ctx, input)
}

func (s *stubTaskService) UpdateTask(ctx context.Context, actorID string, input ports.UpdateTaskInput) (*domain.Task, error) {
	return s.updateFn(ctx, actorID, input)
}

func (s *stubTaskService) UpdateTaskStatus(ctx context.Context, actorID, id, status string) (*domain.Task, error) {
	return s.updateStatusFn(ctx, actorID, id, status)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, actorID, id string) error {
	return s.deleteFn(ctx, actorID, id)
}

type stubActivityQuery struct {
	listFn func(ctx context.Context, taskID string, limit int) ([]*domain.TaskActivity, error)
}

func (s *stubActivityQuery) Process(_ context.Context, _ ports.TaskActivityInput) error { return nil }

func (s *stubActivityQuery) ListByTask(ctx context.Context, taskID string, limit int) ([]*domain.TaskActivity, error) {
	return s.listFn(ctx, taskID, limit)
}

func TestTaskHandler_Create_OwnerIsCaller(t *testing.T) {
	stub := &stubTaskService{
		createFn: func(_ context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
			if input.OwnerID != "u1" {
				t.Fatalf("owner must come from the caller identity, got %q", input.OwnerID)
			}
			return &domain.Task{ID: "t1", Title: input.Title, Status: domain.StatusTodo,
				Priority: domain.PriorityMedium, OwnerID: input.OwnerID}, nil
		},
	}
	h := NewTaskHandler(stub, &stubActivityQuery{})

	c, rec := newTestContext(t, http.MethodPost, "/tasks", `{"title":"write report"}`)
	middleware.SetIdentity(c, &auth.Identity{ID: "u1", Role: auth.RoleUser})

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "todo" || resp["owner_id"] != "u1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Create_RequiresIdentity(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{}, &stubActivityQuery{})

	c, _ := newTestContext(t, http.MethodPost, "/tasks", `{"title":"x"}`)

	err := h.Create(c)
	var ae *auth.AuthzError
	if !errors.As(err, &ae) || ae.Kind != auth.AuthzUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestTaskHandler_Create_RejectsEmptyTitle(t *testing.T) {
	stub := &stubTaskService{
		createFn: func(_ context.Context, _ ports.CreateTaskInput) (*domain.Task, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewTaskHandler(stub, &stubActivityQuery{})

	c, _ := newTestContext(t, http.MethodPost, "/tasks", `{"title":""}`)
	middleware.SetIdentity(c, &auth.Identity{ID: "u1", Role: auth.RoleUser})

	if err := h.Create(c); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestTaskHandler_List_AdminFlagFollowsRole(t *testing.T) {
	for _, tc := range []struct {
		role  auth.Role
		admin bool
	}{
		{auth.RoleUser, false},
		{auth.RoleManager, false},
		{auth.RoleAdmin, true},
	} {
		stub := &stubTaskService{
			listFn: func(_ context.Context, input ports.ListTasksInput) (*ports.ListTasksResult, error) {
				if input.IsAdmin != tc.admin {
					t.Fatalf("role %s: IsAdmin = %v, want %v", tc.role, input.IsAdmin, tc.admin)
				}
				return &ports.ListTasksResult{Page: 1, Limit: 20}, nil
			},
		}
		h := NewTaskHandler(stub, &stubActivityQuery{})

		c, _ := newTestContext(t, http.MethodGet, "/tasks", "")
		middleware.SetIdentity(c, &auth.Identity{ID: "u1", Role: tc.role})

		if err := h.List(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	}
}

func TestTaskHandler_List_ParsesQueryParams(t *testing.T) {
	stub := &stubTaskService{
		listFn: func(_ context.Context, input ports.ListTasksInput) (*ports.ListTasksResult, error) {
			if input.Status != "done" || input.Page != 2 || input.Limit != 5 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.ListTasksResult{
				Items: []*domain.Task{{ID: "t1", Title: "a", Status: domain.StatusDone}},
				Total: 6, Page: 2, Limit: 5, TotalPages: 2,
			}, nil
		},
	}
	h := NewTaskHandler(stub, &stubActivityQuery{})

	c, rec := newTestContext(t, http.MethodGet, "/tasks?status=done&page=2&limit=5", "")
	middleware.SetIdentity(c, &auth.Identity{ID: "u1", Role: auth.RoleUser})

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Data       []map[string]any `json:"data"`
		Pagination map[string]any   `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Pagination["total_pages"] != float64(2) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Get_PropagatesNotFound(t *testing.T) {
	stub := &stubTaskService{
		getFn: func(_ context.Context, _ string) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
	}
	h := NewTaskHandler(stub, &stubActivityQuery{})

	c, _ := newTestContext(t, http.MethodGet, "/tasks/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Get(c); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_Update_PartialFields(t *testing.T) {
	stub := &stubTaskService{
		updateFn: func(_ context.Context, actorID string, input ports.UpdateTaskInput) (*domain.Task, error) {
			if actorID != "u1" || input.ID != "t1" {
				t.Fatalf("unexpected args: %s %+v", actorID, input)
			}
			if input.Title == nil || *input.Title != "new title" {
				t.Fatalf("title pointer not set: %+v", input)
			}
			if input.Description != nil {
				t.Fatal("absent fields must stay nil")
			}
			return &domain.Task{ID: "t1", Title: *input.Title}, nil
		},
	}
	h := NewTaskHandler(stub, &stubActivityQuery{})

	c, _ := newTestContext(t, http.MethodPatch, "/tasks/t1", `{"title":"new title"}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	middleware.SetIdentity(c, &auth.Identity{ID: "u1", Role: auth.RoleUser})

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestTaskHandler_UpdateStatus(t *testing.T) {
	stub := &stubTaskService{
		updateStatusFn: func(_ context.Context, actorID, id, status string) (*domain.Task, error) {
			if actorID != "u1" || id != "t1" || status != "in_progress" {
				t.Fatalf("unexpected args: %s %s %s", actorID, id, status)
			}
			return &domain.Task{ID: "t1", Status: domain.StatusInProgress}, nil
		},
	}
	h := NewTaskHandler(stub, &stubActivityQuery{})

	c, rec := newTestContext(t, http.MethodPatch, "/tasks/t1/status", `{"status":"in_progress"}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	middleware.SetIdentity(c, &auth.Identity{ID: "u1", Role: auth.RoleUser})

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTaskHandler_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	stub := &stubTaskService{
		updateStatusFn: func(_ context.Context, _, _, _ string) (*domain.Task, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewTaskHandler(stub, &stubActivityQuery{})

	c, _ := newTestContext(t, http.MethodPatch, "/tasks/t1/status", `{"status":"paused"}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	middleware.SetIdentity(c, &auth.Identity{ID: "u1", Role: auth.RoleUser})

	if err := h.UpdateStatus(c); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	called := false
	stub := &stubTaskService{
		deleteFn: func(_ context.Context, actorID, id string) error {
			called = true
			if actorID != "u1" || id != "t1" {
				t.Fatalf("unexpected args: %s %s", actorID, id)
			}
			return nil
		},
	}
	h := NewTaskHandler(stub, &stubActivityQuery{})

	c, rec := newTestContext(t, http.MethodDelete, "/tasks/t1", "")
	c.SetParamNames("id")
	c.SetParamValues("t1")
	middleware.SetIdentity(c, &auth.Identity{ID: "u1", Role: auth.RoleUser})

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("delete not forwarded to service")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestTaskHandler_Activity(t *testing.T) {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	activity := &stubActivityQuery{
		listFn: func(_ context.Context, taskID string, limit int) ([]*domain.TaskActivity, error) {
			if taskID != "t1" || limit != 10 {
				t.Fatalf("unexpected args: %s %d", taskID, limit)
			}
			return []*domain.TaskActivity{
				{TaskID: "t1", ActorID: "u1", Action: domain.ActionStatusChanged, Detail: "todo -> in_progress", Timestamp: ts},
			}, nil
		},
	}
	h := NewTaskHandler(&stubTaskService{}, activity)

	c, rec := newTestContext(t, http.MethodGet, "/tasks/t1/activity?limit=10", "")
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := h.Activity(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		TaskID string           `json:"task_id"`
		Items  []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.TaskID != "t1" || len(resp.Items) != 1 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.Items[0]["action"] != "status_changed" {
		t.Fatalf("unexpected action: %+v", resp.Items[0])
	}
}
