package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/response"
	"github.com/taskdeck/taskdeck/internal/services"
	"github.com/taskdeck/taskdeck/internal/storage"
	"github.com/taskdeck/taskdeck/internal/types"
	"github.com/taskdeck/taskdeck/internal/utils"
)

// ImageField is the multipart field that carries a project image.
const ImageField = "imageProject"

type ProjectRequest struct {
	Title       *string  `form:"title" json:"title"`
	Description *string  `form:"description" json:"description"`
	Status      *string  `form:"status" json:"status"`
	AssignToID  types.ID `form:"assignToId" json:"assignToId"`
	RemoveImage bool     `form:"removeImage" json:"removeImage"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// bindProject accepts either a multipart form, optionally with an image, or a JSON body.
func bindProject(ctx *gin.Context) (ProjectRequest, *storage.File, error) {
	var body ProjectRequest

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, storage.MaxRequestBody)

	if err := ctx.ShouldBind(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return body, nil, apperr.Validation("File too large")
		}
		return body, nil, apperr.Validation("Invalid request body")
	}

	if ctx.ContentType() != gin.MIMEMultipartPOSTForm {
		return body, nil, nil
	}

	header, err := ctx.FormFile(ImageField)

	if errors.Is(err, http.ErrMissingFile) {
		return body, nil, nil
	}

	if err != nil {
		return body, nil, apperr.Validation("Invalid image upload")
	}

	file := storage.FromFileHeader(header)

	return body, &file, nil
}

func (h *ProjectHandler) List(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)

	if err != nil {
		response.Error(ctx, apperr.Auth("User not authenticated"), "")
		return
	}

	list, err := h.projects.List(ctx.Request.Context(), caller)

	if err != nil {
		response.Error(ctx, err, "Failed to fetch projects")
		return
	}

	response.Success(ctx, http.StatusOK, "Projects fetched successfully", list)
}

func (h *ProjectHandler) Create(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)

	if err != nil {
		response.Error(ctx, apperr.Auth("User not authenticated"), "")
		return
	}

	body, image, err := bindProject(ctx)

	if err != nil {
		response.Error(ctx, err, "")
		return
	}

	in := services.CreateProjectInput{
		Description: body.Description,
		AssignToID:  body.AssignToID.Uint(),
		Image:       image,
	}

	if body.Title != nil {
		in.Title = *body.Title
	}

	if body.Status != nil {
		in.Status = *body.Status
	}

	project, err := h.projects.Create(ctx.Request.Context(), caller, in)

	if err != nil {
		response.Error(ctx, err, "Failed to create project")
		return
	}

	response.Success(ctx, http.StatusCreated, "Project created successfully", project)
}

func (h *ProjectHandler) Get(ctx *gin.Context) {
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

	project, err := h.projects.Detail(ctx.Request.Context(), caller, id)

	if err != nil {
		response.Error(ctx, err, "Failed to fetch project details")
		return
	}

	response.Success(ctx, http.StatusOK, "Project fetched successfully", project)
}

func (h *ProjectHandler) Update(ctx *gin.Context) {
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

	body, image, err := bindProject(ctx)

	if err != nil {
		response.Error(ctx, err, "")
		return
	}

	project, err := h.projects.Update(ctx.Request.Context(), caller, id, services.UpdateProjectInput{
		AssignToID:  body.AssignToID.Uint(),
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Image:       image,
		RemoveImage: body.RemoveImage,
	})

	if err != nil {
		response.Error(ctx, err, "Failed to update project")
		return
	}

	response.Success(ctx, http.StatusOK, "Project updated successfully", project)
}

func (h *ProjectHandler) Delete(ctx *gin.Context) {
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

	if err := h.projects.Delete(ctx.Request.Context(), caller, id); err != nil {
		response.Error(ctx, err, "Failed to delete project")
		return
	}

	response.Success(ctx, http.StatusOK, "Project deleted successfully", nil)
}

func (h *ProjectHandler) UpdateStatus(ctx *gin.Context) {
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

	var body StatusRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		response.Error(ctx, apperr.Validation("Invalid request body"), "")
		return
	}

	project, err := h.projects.UpdateStatus(ctx.Request.Context(), caller, id, body.Status)

	if err != nil {
		response.Error(ctx, err, "Failed to update project status")
		return
	}

	response.Success(ctx, http.StatusOK, "Project status updated successfully", project)
}

func (h *ProjectHandler) AddCategory(ctx *gin.Context) {
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

	var body CategoryRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		response.Error(ctx, apperr.Validation("Invalid request body"), "")
		return
	}

	category, err := h.projects.AddCategory(ctx.Request.Context(), caller, id, body.Name)

	if err != nil {
		response.Error(ctx, err, "Failed to create category")
		return
	}

	response.Success(ctx, http.StatusCreated, "Category created successfully", category)
}

func (h *ProjectHandler) DeleteCategory(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)

	if err != nil {
		response.Error(ctx, apperr.Auth("User not authenticated"), "")
		return
	}

	projectID, err := utils.ParseID(ctx, "id")

	if err != nil {
		response.Error(ctx, err, "")
		return
	}

	categoryID, err := utils.ParseID(ctx, "categoryId")

	if err != nil {
		response.Error(ctx, err, "")
		return
	}

	if err := h.projects.DeleteCategory(ctx.Request.Context(), caller, projectID, categoryID); err != nil {
		response.Error(ctx, err, "Failed to delete category")
		return
	}

	response.Success(ctx, http.StatusOK, "Category deleted successfully", nil)
}
