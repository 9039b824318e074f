// Package web renders the browser pages. It calls the services in-process and
// shares the session cookie with the JSON API.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/services"
	"github.com/taskdeck/taskdeck/internal/storage"
	"github.com/taskdeck/taskdeck/internal/types"
	"github.com/taskdeck/taskdeck/internal/utils"
	"gorm.io/datatypes"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Handler struct {
	users    *services.UserService
	projects *services.ProjectService
	tasks    *services.TaskService
	authz    *policy.Authorizer
	issuer   *auth.TokenIssuer
	cookies  auth.CookieSettings
}

type Deps struct {
	Users    *services.UserService
	Projects *services.ProjectService
	Tasks    *services.TaskService
	Authz    *policy.Authorizer
	Issuer   *auth.TokenIssuer
	Cookies  auth.CookieSettings
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		users:    deps.Users,
		projects: deps.Projects,
		tasks:    deps.Tasks,
		authz:    deps.Authz,
		issuer:   deps.Issuer,
		cookies:  deps.Cookies,
	}
}

func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"date": func(d *datatypes.Date) string {
			if d == nil {
				return ""
			}
			return time.Time(*d).Format("2006-01-02")
		},
		"statusClass": func(status string) string {
			return strings.ToLower(strings.ReplaceAll(status, " ", "-"))
		},
	}).ParseFS(templatesFS, "templates/*.html"))
}

// Register installs the templates and the page routes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())

	r.GET("/", func(ctx *gin.Context) { ctx.Redirect(http.StatusFound, "/dashboard") })
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	pages := r.Group("", h.RequireSession)
	{
		pages.GET("/dashboard", h.Dashboard)
		pages.GET("/projects/:id", h.Project)
		pages.POST("/projects/:id/status", h.ChangeProjectStatus)
		pages.POST("/projects/:id/delete", h.DeleteProject)
		pages.POST("/projects/:id/tasks", h.AddTask)
		pages.POST("/tasks/:id/status", h.ChangeTaskStatus)
		pages.GET("/new-project", h.NewProjectPage)
		pages.POST("/new-project", h.CreateProject)
	}
}

// RequireSession redirects to the login page when the session cookie is missing or invalid.
func (h *Handler) RequireSession(ctx *gin.Context) {
	token, err := ctx.Cookie(types.SessionCookieName)

	if err != nil || token == "" {
		ctx.Redirect(http.StatusFound, "/login")
		ctx.Abort()
		return
	}

	claims, err := h.issuer.VerifyJWT(token)

	if err != nil {
		http.SetCookie(ctx.Writer, h.cookies.Cleared())
		ctx.Redirect(http.StatusFound, "/login")
		ctx.Abort()
		return
	}

	ctx.Set(types.ContextUserKey, policy.Caller{
		ID:    claims.ID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	})
	ctx.Next()
}

// session returns the caller with the role currently held in the store.
func (h *Handler) session(ctx *gin.Context) (policy.Caller, bool) {
	caller, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.Redirect(http.StatusFound, "/login")
		return policy.Caller{}, false
	}

	role, err := h.authz.Role(ctx.Request.Context(), caller)

	if err != nil {
		if apperr.IsKind(err, apperr.KindAuth) {
			http.SetCookie(ctx.Writer, h.cookies.Cleared())
			ctx.Redirect(http.StatusFound, "/login")
			return policy.Caller{}, false
		}
		h.renderError(ctx, err)
		return policy.Caller{}, false
	}

	caller.Role = role

	return caller, true
}

// describe picks the status code and the sentence shown to the user for err.
func describe(err error, fallback string) (int, string) {
	appErr := apperr.From(err, fallback)

	if appErr.Details != "" {
		return appErr.Status(), appErr.Details
	}

	return appErr.Status(), appErr.Message
}

func (h *Handler) renderError(ctx *gin.Context, err error) {
	code, message := describe(err, "Something went wrong")

	ctx.HTML(code, "error.html", gin.H{
		"Title":   fmt.Sprintf("%d", code),
		"Code":    code,
		"Message": message,
	})
}

func (h *Handler) LoginPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", gin.H{"Title": "Sign in"})
}

func (h *Handler) Login(ctx *gin.Context) {
	email := ctx.PostForm("email")

	user, err := h.users.Login(ctx.Request.Context(), email, ctx.PostForm("password"))

	if err == nil {
		var token string
		token, err = h.issuer.GenerateJWT(user)

		if err == nil {
			http.SetCookie(ctx.Writer, h.cookies.Session(token, h.issuer.TTL()))
			ctx.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
	}

	code, message := describe(err, "Failed to log in")

	ctx.HTML(code, "login.html", gin.H{
		"Title": "Sign in",
		"Error": message,
		"Email": email,
	})
}

func (h *Handler) Logout(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, h.cookies.Cleared())
	ctx.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) Dashboard(ctx *gin.Context) {
	caller, ok := h.session(ctx)
	if !ok {
		return
	}

	list, err := h.projects.List(ctx.Request.Context(), caller)

	if err != nil {
		h.renderError(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":    "Dashboard",
		"User":     caller,
		"IsAdmin":  list.Role == types.RoleAdmin,
		"Projects": list.Projects,
	})
}

type projectPage struct {
	Title           string
	User            policy.Caller
	IsAdmin         bool
	CanChangeStatus bool
	Project         models.Project
	Statuses        []string
	Priorities      []string
	Users           []types.UserResponse
}

func (h *Handler) Project(ctx *gin.Context) {
	caller, ok := h.session(ctx)
	if !ok {
		return
	}

	id, err := utils.ParseID(ctx, "id")

	if err != nil {
		h.renderError(ctx, err)
		return
	}

	project, err := h.projects.Detail(ctx.Request.Context(), caller, id)

	if err != nil {
		h.renderError(ctx, err)
		return
	}

	page := projectPage{
		Title:           project.Title,
		User:            caller,
		IsAdmin:         caller.Role == types.RoleAdmin,
		CanChangeStatus: policy.Allowed(caller.Role, caller.ID, policy.ProjectStatus, &policy.Resource{AssigneeID: project.AssignToID}),
		Project:         project,
		Statuses:        types.StatusValues,
		Priorities:      types.PriorityValues,
	}

	if page.IsAdmin {
		if page.Users, err = h.users.List(ctx.Request.Context()); err != nil {
			h.renderError(ctx, err)
			return
		}
	}

	ctx.HTML(http.StatusOK, "project.html", page)
}

func (h *Handler) ChangeProjectStatus(ctx *gin.Context) {
	caller, ok := h.session(ctx)
	if !ok {
		return
	}

	id, err := utils.ParseID(ctx, "id")

	if err != nil {
		h.renderError(ctx, err)
		return
	}

	if _, err := h.projects.UpdateStatus(ctx.Request.Context(), caller, id, ctx.PostForm("status")); err != nil {
		h.renderError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/projects/%d", id))
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	caller, ok := h.session(ctx)
	if !ok {
		return
	}

	id, err := utils.ParseID(ctx, "id")

	if err != nil {
		h.renderError(ctx, err)
		return
	}

	if err := h.projects.Delete(ctx.Request.Context(), caller, id); err != nil {
		h.renderError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) AddTask(ctx *gin.Context) {
	caller, ok := h.session(ctx)
	if !ok {
		return
	}

	id, err := utils.ParseID(ctx, "id")

	if err != nil {
		h.renderError(ctx, err)
		return
	}

	in := services.CreateTaskInput{
		ProjectID: id,
		Title:     ctx.PostForm("title"),
		Priority:  ctx.PostForm("priority"),
	}

	if due := ctx.PostForm("dueDate"); due != "" {
		in.DueDate = &due
	}

	if raw := ctx.PostForm("assignedToId"); raw != "" {
		var assignee types.ID
		if err := assignee.UnmarshalParam(raw); err != nil {
			h.renderError(ctx, apperr.Validation("Invalid assignedToId"))
			return
		}
		if assignee != 0 {
			value := assignee.Uint()
			in.AssignedToID = &value
		}
	}

	if _, err := h.tasks.Create(ctx.Request.Context(), caller, in); err != nil {
		h.renderError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/projects/%d", id))
}

func (h *Handler) ChangeTaskStatus(ctx *gin.Context) {
	caller, ok := h.session(ctx)
	if !ok {
		return
	}

	id, err := utils.ParseID(ctx, "id")

	if err != nil {
		h.renderError(ctx, err)
		return
	}

	task, err := h.tasks.UpdateStatus(ctx.Request.Context(), caller, id, ctx.PostForm("status"))

	if err != nil {
		h.renderError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/projects/%d", task.ProjectID))
}

type newProjectPage struct {
	Title    string
	User     policy.Caller
	Users    []types.UserResponse
	Statuses []string
	Error    string
	Form     map[string]string
}

func (h *Handler) NewProjectPage(ctx *gin.Context) {
	caller, ok := h.session(ctx)
	if !ok {
		return
	}

	if caller.Role != types.RoleAdmin {
		ctx.Redirect(http.StatusFound, "/dashboard")
		return
	}

	h.renderNewProject(ctx, caller, http.StatusOK, "", nil)
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	caller, ok := h.session(ctx)
	if !ok {
		return
	}

	if caller.Role != types.RoleAdmin {
		ctx.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	if err := parseProjectForm(ctx); err != nil {
		code, message := describe(err, "Invalid form")
		h.renderNewProject(ctx, caller, code, message, nil)
		return
	}

	form := map[string]string{
		"title":       ctx.PostForm("title"),
		"description": ctx.PostForm("description"),
		"status":      ctx.PostForm("status"),
		"assignToId":  ctx.PostForm("assignToId"),
	}

	var assignee types.ID
	if err := assignee.UnmarshalParam(form["assignToId"]); err != nil {
		h.renderNewProject(ctx, caller, http.StatusBadRequest, "Invalid assignToId", form)
		return
	}

	description := form["description"]

	in := services.CreateProjectInput{
		Title:       form["title"],
		Description: &description,
		Status:      form["status"],
		AssignToID:  assignee.Uint(),
	}

	header, err := ctx.FormFile("imageProject")

	switch {
	case err == nil:
		file := storage.FromFileHeader(header)
		in.Image = &file
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		h.renderNewProject(ctx, caller, http.StatusBadRequest, "Invalid image upload", form)
		return
	}

	project, err := h.projects.Create(ctx.Request.Context(), caller, in)

	if err != nil {
		code, message := describe(err, "Failed to create project")
		h.renderNewProject(ctx, caller, code, message, form)
		return
	}

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/projects/%d", project.ID))
}

// parseProjectForm reads the whole form under the same size cap as the JSON API.
func parseProjectForm(ctx *gin.Context) error {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, storage.MaxRequestBody)

	_, err := ctx.MultipartForm()

	if errors.Is(err, http.ErrNotMultipart) {
		err = ctx.Request.ParseForm()
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Validation("File too large")
	}

	if err != nil {
		return apperr.Validation("Invalid form")
	}

	return nil
}

func (h *Handler) renderNewProject(ctx *gin.Context, caller policy.Caller, code int, message string, form map[string]string) {
	users, err := h.users.List(ctx.Request.Context())

	if err != nil {
		h.renderError(ctx, err)
		return
	}

	ctx.HTML(code, "new_project.html", newProjectPage{
		Title:    "New project",
		User:     caller,
		Users:    users,
		Statuses: types.StatusValues,
		Error:    message,
		Form:     form,
	})
}
