package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskhq/task-manager-api/internal/auth"
	"github.com/taskhq/task-manager-api/internal/core/ports"
)

type TaskHandler struct {
	tasks    ports.TaskService
	activity ports.ActivityService
}

func NewTaskHandler(tasks ports.TaskService, activity ports.ActivityService) *TaskHandler {
	return &TaskHandler{tasks: tasks, activity: activity}
}

// Create creates a task owned by the caller.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		OwnerID:     ident.ID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// Get returns a single task. Ownership is enforced by middleware before
// this handler runs.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.tasks.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// List returns a page of the caller's tasks. Admins see every task.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        status    query     string  false  "Filter by status"
// @Param        priority  query     string  false  "Filter by priority"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  listTasksResponse
// @Failure      401       {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.tasks.ListTasks(c.Request().Context(), ports.ListTasksInput{
		OwnerID:  ident.ID,
		IsAdmin:  ident.Role == auth.RoleAdmin,
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	items := make([]taskResponse, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, toTaskResponse(t))
	}

	return c.JSON(http.StatusOK, listTasksResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Update applies a partial update to a task.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to update"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.tasks.UpdateTask(c.Request().Context(), ident.ID, ports.UpdateTaskInput{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// UpdateStatus moves a task through its lifecycle.
//
// @Summary      Change task status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Task ID"
// @Param        body  body      updateStatusRequest  true  "Target status"
// @Success      200   {object}  taskResponse
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.tasks.UpdateTaskStatus(c.Request().Context(), ident.ID, c.Param("id"), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete removes a task.
//
// @Summary      Delete a task
// @Tags         tasks
// @Param        id  path  string  true  "Task ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	if err := h.tasks.DeleteTask(c.Request().Context(), ident.ID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Activity returns the most recent activity entries for a task.
//
// @Summary      Task activity feed
// @Tags         tasks
// @Produce      json
// @Param        id     path      string  true   "Task ID"
// @Param        limit  query     int     false  "Max entries"
// @Success      200    {object}  activityFeedResponse
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /tasks/{id}/activity [get]
func (h *TaskHandler) Activity(c echo.Context) error {
	taskID := c.Param("id")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.activity.ListByTask(c.Request().Context(), taskID, limit)
	if err != nil {
		return err
	}

	items := make([]activityItemResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, activityItemResponse{
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			Detail:    e.Detail,
			Timestamp: e.Timestamp,
		})
	}

	return c.JSON(http.StatusOK, activityFeedResponse{TaskID: taskID, Items: items})
}
