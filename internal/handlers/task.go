package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/response"
	"github.com/taskdeck/taskdeck/internal/services"
	"github.com/taskdeck/taskdeck/internal/types"
	"github.com/taskdeck/taskdeck/internal/utils"
)

type CreateTaskRequest struct {
	ProjectID   types.ID `json:"projectId"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	AssignedTo  types.ID `json:"assignedToId"`

	// Task is the older name for Title.
	Task string `json:"task"`
}

type TaskStatusRequest struct {
	TaskID types.ID `json:"taskId"`
	Status string   `json:"status"`
}

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) Create(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)

	if err != nil {
		response.Error(ctx, apperr.Auth("User not authenticated"), "")
		return
	}

	var body CreateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		response.Error(ctx, apperr.Validation("Invalid request body"), "")
		return
	}

	title := body.Title
	if strings.TrimSpace(title) == "" {
		title = body.Task
	}

	in := services.CreateTaskInput{
		ProjectID:   body.ProjectID.Uint(),
		Title:       title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
	}

	if body.AssignedTo != 0 {
		assignee := body.AssignedTo.Uint()
		in.AssignedToID = &assignee
	}

	task, err := h.tasks.Create(ctx.Request.Context(), caller, in)

	if err != nil {
		response.Error(ctx, err, "Failed to create task")
		return
	}

	response.Success(ctx, http.StatusCreated, "Task created successfully", task)
}

func (h *TaskHandler) List(ctx *gin.Context) {
	projectID, err := utils.ParseOptionalID(ctx, "projectId")

	if err != nil {
		response.Error(ctx, err, "")
		return
	}

	tasks, err := h.tasks.List(ctx.Request.Context(), projectID)

	if err != nil {
		response.Error(ctx, err, "Failed to fetch tasks")
		return
	}

	response.Success(ctx, http.StatusOK, "Tasks fetched successfully", tasks)
}

func (h *TaskHandler) Get(ctx *gin.Context) {
	id, err := utils.ParseID(ctx, "id")

	if err != nil {
		response.Error(ctx, err, "")
		return
	}

	task, err := h.tasks.Get(ctx.Request.Context(), id)

	if err != nil {
		response.Error(ctx, err, "Failed to fetch task")
		return
	}

	response.Success(ctx, http.StatusOK, "Task fetched successfully", task)
}

func (h *TaskHandler) Update(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)

	if err != nil {
		response.Error(ctx, apperr.Auth("User not authenticated"), "")
		return
	}

	id, err := utils.ParseID(ctx, "id")

	if err != nil {
		response.Error(ctx, err, "")
		return
	}

	var body services.UpdateTaskInput

	if err := ctx.ShouldBindJSON(&body); err != nil {
		response.Error(ctx, apperr.Validation("Invalid request body"), "")
		return
	}

	task, err := h.tasks.Update(ctx.Request.Context(), caller, id, body)

	if err != nil {
		response.Error(ctx, err, "Failed to update task")
		return
	}

	response.Success(ctx, http.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) UpdateStatus(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)

	if err != nil {
		response.Error(ctx, apperr.Auth("User not authenticated"), "")
		return
	}

	var body TaskStatusRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		response.Error(ctx, apperr.Validation("Invalid taskId"), "")
		return
	}

	task, err := h.tasks.UpdateStatus(ctx.Request.Context(), caller, body.TaskID.Uint(), body.Status)

	if err != nil {
		response.Error(ctx, err, "Failed to update task status")
		return
	}

	response.Success(ctx, http.StatusOK, "Task status updated successfully", task)
}

func (h *TaskHandler) Delete(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)

	if err != nil {
		response.Error(ctx, apperr.Auth("User not authenticated"), "")
		return
	}

	id, err := utils.ParseID(ctx, "id")

	if err != nil {
		response.Error(ctx, err, "")
		return
	}

	if err := h.tasks.Delete(ctx.Request.Context(), caller, id); err != nil {
		response.Error(ctx, err, "Failed to delete task")
		return
	}

	response.Success(ctx, http.StatusOK, "Task deleted successfully", nil)
}
