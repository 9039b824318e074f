package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateTaskInput struct {
	ProjectID    uint
	Title        string
	Description  *string
	Status       string
	Priority     string
	DueDate      *string
	AssignedToID *uint
}

// UpdateTaskInput leaves omitted fields unchanged and clears fields sent as null.
type UpdateTaskInput struct {
	Title        types.Optional[string] `json:"title"`
	Description  types.Optional[string] `json:"description"`
	Status       types.Optional[string] `json:"status"`
	Priority     types.Optional[string] `json:"priority"`
	DueDate      types.Optional[string] `json:"dueDate"`
	AssignedToID types.Optional[uint]   `json:"assignedToId"`
}

type TaskService struct {
	db    *gorm.DB
	authz *policy.Authorizer
	hooks Hooks
}

func NewTaskService(db *gorm.DB, authz *policy.Authorizer, hooks Hooks) *TaskService {
	return &TaskService{db: db, authz: authz, hooks: hooks}
}

var dueDateLayouts = []string{"2006-01-02", time.RFC3339}

func ParseDueDate(value string) (*datatypes.Date, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return nil, nil
	}

	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			date := datatypes.Date(parsed)
			return &date, nil
		}
	}

	return nil, apperr.Validation("dueDate must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}

func invalidStatus() error {
	return apperr.Validation("Invalid status. Allowed statuses: Open, In Progress, Closed")
}

func invalidPriority() error {
	return apperr.Validation("Priority must be one of: low, medium, high")
}

func (s *TaskService) Create(ctx context.Context, caller policy.Caller, in CreateTaskInput) (models.Task, error) {
	if err := s.authz.Can(ctx, caller, policy.TaskCreate, nil); err != nil {
		return models.Task{}, err
	}

	if in.ProjectID == 0 {
		return models.Task{}, apperr.Validation("Project ID is required")
	}

	title := strings.TrimSpace(in.Title)

	if title == "" {
		return models.Task{}, apperr.Validation("Task is required")
	}

	status := in.Status
	if status == "" {
		status = types.StatusOpen
	}

	if !types.IsStatus(status) {
		return models.Task{}, invalidStatus()
	}

	priority := in.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}

	if !types.IsPriority(priority) {
		return models.Task{}, invalidPriority()
	}

	var dueDate *datatypes.Date

	if in.DueDate != nil {
		parsed, err := ParseDueDate(*in.DueDate)

		if err != nil {
			return models.Task{}, err
		}

		dueDate = parsed
	}

	var project models.Project

	if err := s.db.WithContext(ctx).Select("id").First(&project, in.ProjectID).Error; err != nil {
		return models.Task{}, notFoundOr(err, "Project not found", "Failed to create task")
	}

	if in.AssignedToID != nil {
		if err := s.userExists(ctx, *in.AssignedToID); err != nil {
			return models.Task{}, err
		}
	}

	creatorID := caller.ID

	task := models.Task{
		ProjectID:    project.ID,
		Title:        title,
		Description:  trimmedOrNil(in.Description),
		Status:       status,
		Priority:     priority,
		DueDate:      dueDate,
		AssignedToID: in.AssignedToID,
		CreatedByID:  &creatorID,
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, apperr.Internal("Failed to create task", err)
	}

	s.hooks.changed(task.ProjectID)

	return s.Get(ctx, task.ID)
}

func (s *TaskService) List(ctx context.Context, projectID *uint) ([]models.Task, error) {
	query := s.preloaded(ctx).Order("created_at desc").Order("id desc")

	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	tasks := []models.Task{}

	if err := query.Find(&tasks).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch tasks", err)
	}

	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task

	if err := s.preloaded(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, notFoundOr(err, "Task not found", "Failed to fetch task")
	}

	return task, nil
}

func (s *TaskService) Update(ctx context.Context, caller policy.Caller, id uint, in UpdateTaskInput) (models.Task, error) {
	if err := s.authz.Can(ctx, caller, policy.TaskUpdate, nil); err != nil {
		return models.Task{}, err
	}

	updates := map[string]interface{}{}

	if in.Title.Set {
		title := strings.TrimSpace(in.Title.Value)

		if in.Title.Null || title == "" {
			return models.Task{}, apperr.Validation("Title cannot be empty")
		}

		updates["title"] = title
	}

	if in.Description.Set {
		updates["description"] = trimmedOrNil(in.Description.Ptr())
	}

	if in.Status.Set {
		if in.Status.Null || !types.IsStatus(in.Status.Value) {
			return models.Task{}, invalidStatus()
		}

		updates["status"] = in.Status.Value
	}

	if in.Priority.Set {
		if in.Priority.Null || !types.IsPriority(in.Priority.Value) {
			return models.Task{}, invalidPriority()
		}

		updates["priority"] = in.Priority.Value
	}

	if in.DueDate.Set {
		var dueDate *datatypes.Date

		if !in.DueDate.Null {
			parsed, err := ParseDueDate(in.DueDate.Value)

			if err != nil {
				return models.Task{}, err
			}

			dueDate = parsed
		}

		updates["due_date"] = dueDate
	}

	var task models.Task

	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, notFoundOr(err, "Task not found", "Failed to update task")
	}

	if in.AssignedToID.Set {
		if in.AssignedToID.Null {
			updates["assigned_to_id"] = nil
		} else {
			if err := s.userExists(ctx, in.AssignedToID.Value); err != nil {
				return models.Task{}, err
			}

			updates["assigned_to_id"] = in.AssignedToID.Value
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&task).Updates(updates).Error; err != nil {
			return models.Task{}, apperr.Internal("Failed to update task", err)
		}

		s.hooks.changed(task.ProjectID)
	}

	return s.Get(ctx, task.ID)
}

// UpdateStatus is open to every authenticated caller.
func (s *TaskService) UpdateStatus(ctx context.Context, caller policy.Caller, id uint, status string) (models.Task, error) {
	if id == 0 || status == "" {
		return models.Task{}, apperr.Validation("taskId and status are required.")
	}

	if !types.IsStatus(status) {
		return models.Task{}, invalidStatus()
	}

	if err := s.authz.Can(ctx, caller, policy.TaskStatus, nil); err != nil {
		return models.Task{}, err
	}

	var task models.Task

	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, notFoundOr(err, "Task not found", "Failed to update task status")
	}

	if err := s.db.WithContext(ctx).Model(&task).Update("status", status).Error; err != nil {
		return models.Task{}, apperr.Internal("Failed to update task status", err)
	}

	task.Status = status
	s.hooks.changed(task.ProjectID)

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	if err := s.authz.Can(ctx, caller, policy.TaskDelete, nil); err != nil {
		return err
	}

	var task models.Task

	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return notFoundOr(err, "Task not found", "Failed to delete task")
	}

	if err := s.db.WithContext(ctx).Delete(&task).Error; err != nil {
		return apperr.Internal("Failed to delete task", err)
	}

	s.hooks.changed(task.ProjectID)

	return nil
}

func (s *TaskService) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Project").
		Preload("AssignedTo").
		Preload("CreatedBy")
}

func (s *TaskService) userExists(ctx context.Context, id uint) error {
	var user models.User

	if err := s.db.WithContext(ctx).Select("id").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("assignedToId does not match any user")
		}
		return apperr.Internal("Failed to resolve assignee", err)
	}

	return nil
}
