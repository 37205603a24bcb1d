package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type taskRequest struct {
	Name        utils.Optional[string] `json:"name"`
	Description utils.Optional[string] `json:"description"`
	StartDate   utils.Optional[string] `json:"start_date"`
	EndDate     utils.Optional[string] `json:"end_date"`
	Project     utils.Optional[uint64] `json:"project"`
	Assignee    utils.Optional[uint64] `json:"assignee"`
	Status      utils.Optional[string] `json:"status"`
}

func (r taskRequest) input() services.TaskInput {
	return services.TaskInput{
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Project:     r.Project,
		Assignee:    r.Assignee,
		Status:      r.Status,
	}
}

// ListTasks returns tasks assigned to the current user or in projects they created.
// Can filter by status, project and assignee.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{
		Actor:      user,
		Pagination: utils.GetPaginationParams(c),
	}
	fields := apierrors.FieldErrors{}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		if !status.Valid() {
			fields.Add("status", fmt.Sprintf("%q is not a valid choice.", statusStr))
		}
		input.Status = &status
	}
	input.ProjectID = parseUintQuery(c, fields, "project")
	input.AssigneeID = parseUintQuery(c, fields, "assignee")

	if len(fields) > 0 {
		apierrors.ValidationFailed(c, fields)
		return
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondError(c, err)
		return
	}

	setTotalCount(c, total)
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondBindingError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(user, req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a specific task by ID.
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, msgNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies PUT and PATCH bodies. Both are partial.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, msgNotFound)
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondBindingError(c, err)
		return
	}

	updated, err := h.taskService.UpdateTask(user, task, req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, msgNotFound)
		return
	}

	if err := h.taskService.DeleteTask(task); err != nil {
		respondError(c, err)
		return
	}

	noContent(c)
}

func parseUintQuery(c *gin.Context, fields apierrors.FieldErrors, key string) *uint64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		fields.Add(key, "A valid integer is required.")
		return nil
	}
	return &value
}
