package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/storage"
	"github.com/taskdeck/taskdeck/internal/types"
	"gorm.io/gorm"
)

const (
	MinTitleLength = 5
	MaxTitleLength = 100
)

// ImageStore is the part of storage.Uploader the project service needs.
type ImageStore interface {
	Upload(ctx context.Context, file storage.File) (storage.Result, error)
	Remove(ctx context.Context, key string) error
}

type CreateProjectInput struct {
	Title       string
	Description *string
	Status      string
	AssignToID  uint
	Image       *storage.File
}

type UpdateProjectInput struct {
	AssignToID  uint
	Title       *string
	Description *string
	Status      *string
	Image       *storage.File
	RemoveImage bool
}

type ProjectList struct {
	Projects []models.Project `json:"projects"`
	Role     types.Role       `json:"role"`
}

type ProjectService struct {
	db     *gorm.DB
	authz  *policy.Authorizer
	images ImageStore
	hooks  Hooks
}

func NewProjectService(db *gorm.DB, authz *policy.Authorizer, images ImageStore, hooks Hooks) *ProjectService {
	return &ProjectService{db: db, authz: authz, images: images, hooks: hooks}
}

func ValidateTitle(title string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(title))

	if length < MinTitleLength || length > MaxTitleLength {
		return apperr.Validation("Title is required, Title must be between 5 and 100 characters")
	}

	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*s)

	if trimmed == "" {
		return nil
	}

	return &trimmed
}

func (s *ProjectService) List(ctx context.Context, caller policy.Caller) (ProjectList, error) {
	role, err := s.authz.Role(ctx, caller)

	if err != nil {
		return ProjectList{}, err
	}

	query := s.db.WithContext(ctx).
		Preload("AssignTo").
		Preload("Tasks", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Preload("Categories").
		Order("id desc")

	if role != types.RoleAdmin {
		query = query.Where("assign_to_id = ?", caller.ID)
	}

	projects := []models.Project{}

	if err := query.Find(&projects).Error; err != nil {
		return ProjectList{}, apperr.Internal("Failed to fetch projects", err)
	}

	return ProjectList{Projects: projects, Role: role}, nil
}

func (s *ProjectService) Create(ctx context.Context, caller policy.Caller, in CreateProjectInput) (models.Project, error) {
	if err := s.authz.Can(ctx, caller, policy.ProjectCreate, nil); err != nil {
		return models.Project{}, err
	}

	if err := ValidateTitle(in.Title); err != nil {
		return models.Project{}, err
	}

	if in.AssignToID == 0 {
		return models.Project{}, apperr.Validation("assignToId is required")
	}

	status := in.Status
	if status == "" {
		status = types.StatusOpen
	}

	if !types.IsProjectCreateStatus(status) {
		return models.Project{}, apperr.Validation("Status must be one of: Open, In Progress, Closed, Done")
	}

	if in.Image != nil {
		if err := storage.Validate(*in.Image); err != nil {
			return models.Project{}, err
		}
	}

	assignee, err := s.resolveAssignee(ctx, in.AssignToID)

	if err != nil {
		return models.Project{}, err
	}

	project := models.Project{
		Title:       strings.TrimSpace(in.Title),
		Description: trimmedOrNil(in.Description),
		Status:      status,
		AssignToID:  assignee.ID,
	}

	if in.Image != nil {
		uploaded, err := s.images.Upload(ctx, *in.Image)

		if err != nil {
			return models.Project{}, err
		}

		project.ImageURL = &uploaded.URL
		project.ImageKey = &uploaded.Key
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		s.removeImage(ctx, project.ImageKey)
		return models.Project{}, apperr.Internal("Failed to create project", err)
	}

	created, err := s.load(ctx, project.ID)

	if err != nil {
		return models.Project{}, err
	}

	s.hooks.changed(created.ID)
	s.hooks.assigned(created, assignee)

	return created, nil
}

func (s *ProjectService) Detail(ctx context.Context, caller policy.Caller, id uint) (models.Project, error) {
	project, err := s.load(ctx, id)

	if err != nil {
		return models.Project{}, err
	}

	if err := s.authz.Can(ctx, caller, policy.ProjectRead, &policy.Resource{AssigneeID: project.AssignToID}); err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, caller policy.Caller, id uint, in UpdateProjectInput) (models.Project, error) {
	if err := s.authz.Can(ctx, caller, policy.ProjectUpdate, nil); err != nil {
		return models.Project{}, err
	}

	if in.AssignToID == 0 {
		return models.Project{}, apperr.Validation("assignToId is required")
	}

	if in.Title != nil {
		if err := ValidateTitle(*in.Title); err != nil {
			return models.Project{}, err
		}
	}

	if in.Status != nil && !types.IsStatus(*in.Status) {
		return models.Project{}, apperr.Validation("Status must be one of: Open, In Progress, Closed")
	}

	if in.Image != nil {
		if err := storage.Validate(*in.Image); err != nil {
			return models.Project{}, err
		}
	}

	var project models.Project

	if err := s.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return models.Project{}, notFoundOr(err, "Project not found", "Failed to update project")
	}

	assignee, err := s.resolveAssignee(ctx, in.AssignToID)

	if err != nil {
		return models.Project{}, err
	}

	previousAssignee := project.AssignToID
	previousImageKey := ""
	if project.ImageKey != nil {
		previousImageKey = *project.ImageKey
	}

	updates := map[string]interface{}{
		"assign_to_id": assignee.ID,
	}

	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}

	if in.Description != nil {
		updates["description"] = trimmedOrNil(in.Description)
	}

	if in.Status != nil {
		updates["status"] = *in.Status
	}

	var uploaded *storage.Result

	if in.Image != nil {
		result, err := s.images.Upload(ctx, *in.Image)

		if err != nil {
			return models.Project{}, err
		}

		uploaded = &result
		updates["image_url"] = result.URL
		updates["image_key"] = result.Key
	} else if in.RemoveImage {
		updates["image_url"] = nil
		updates["image_key"] = nil
	}

	if err := s.db.WithContext(ctx).Model(&project).Updates(updates).Error; err != nil {
		if uploaded != nil {
			s.removeImage(ctx, &uploaded.Key)
		}
		return models.Project{}, apperr.Internal("Failed to update project", err)
	}

	if uploaded != nil || in.RemoveImage {
		s.removeImage(ctx, &previousImageKey)
	}

	updated, err := s.load(ctx, id)

	if err != nil {
		return models.Project{}, err
	}

	s.hooks.changed(updated.ID)

	if previousAssignee != assignee.ID {
		s.hooks.assigned(updated, assignee)
	}

	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	if err := s.authz.Can(ctx, caller, policy.ProjectDelete, nil); err != nil {
		return err
	}

	var project models.Project

	if err := s.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return notFoundOr(err, "Project not found", "Failed to delete project")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Category{}).Error; err != nil {
			return err
		}

		return tx.Delete(&project).Error
	})

	if err != nil {
		return apperr.Internal("Failed to delete project", err)
	}

	s.removeImage(ctx, project.ImageKey)
	s.hooks.changed(project.ID)

	return nil
}

func (s *ProjectService) UpdateStatus(ctx context.Context, caller policy.Caller, id uint, status string) (models.Project, error) {
	if !types.IsStatus(status) {
		return models.Project{}, apperr.Validation("Invalid status. Allowed statuses: Open, In Progress, Closed")
	}

	var project models.Project

	if err := s.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return models.Project{}, notFoundOr(err, "Project not found", "Failed to update project status")
	}

	if err := s.authz.Can(ctx, caller, policy.ProjectStatus, &policy.Resource{AssigneeID: project.AssignToID}); err != nil {
		return models.Project{}, err
	}

	if err := s.db.WithContext(ctx).Model(&project).Update("status", status).Error; err != nil {
		return models.Project{}, apperr.Internal("Failed to update project status", err)
	}

	project.Status = status
	s.hooks.changed(project.ID)

	return project, nil
}

func (s *ProjectService) AddCategory(ctx context.Context, caller policy.Caller, projectID uint, name string) (models.Category, error) {
	if err := s.authz.Can(ctx, caller, policy.CategoryManage, nil); err != nil {
		return models.Category{}, err
	}

	name = strings.TrimSpace(name)

	if name == "" || utf8.RuneCountInString(name) > 50 {
		return models.Category{}, apperr.Validation("Category name is required and must be at most 50 characters")
	}

	if err := s.exists(ctx, projectID); err != nil {
		return models.Category{}, err
	}

	category := models.Category{Name: name, ProjectID: projectID}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return models.Category{}, apperr.Internal("Failed to create category", err)
	}

	s.hooks.changed(projectID)

	return category, nil
}

func (s *ProjectService) DeleteCategory(ctx context.Context, caller policy.Caller, projectID, categoryID uint) error {
	if err := s.authz.Can(ctx, caller, policy.CategoryManage, nil); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Where("id = ? AND project_id = ?", categoryID, projectID).Delete(&models.Category{})

	if result.Error != nil {
		return apperr.Internal("Failed to delete category", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperr.NotFound("Category not found")
	}

	s.hooks.changed(projectID)

	return nil
}

func (s *ProjectService) load(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project

	err := s.db.WithContext(ctx).
		Preload("AssignTo").
		Preload("Tasks", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Preload("Tasks.AssignedTo").
		Preload("Categories").
		First(&project, id).Error

	if err != nil {
		return models.Project{}, notFoundOr(err, "Project not found", "Failed to fetch project details")
	}

	return project, nil
}

func (s *ProjectService) exists(ctx context.Context, id uint) error {
	var count int64

	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Internal("Failed to fetch project", err)
	}

	if count == 0 {
		return apperr.NotFound("Project not found")
	}

	return nil
}

func (s *ProjectService) resolveAssignee(ctx context.Context, id uint) (models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.Validation("assignToId does not match any user")
		}
		return models.User{}, apperr.Internal("Failed to resolve assignee", err)
	}

	return user, nil
}

func (s *ProjectService) removeImage(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}

	if err := s.images.Remove(ctx, *key); err != nil {
		slog.WarnContext(ctx, "Failed to remove stored image", slog.String("key", *key), slog.Any("error", err))
	}
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Internal(internal, err)
}
