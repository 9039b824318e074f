package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/handlers"
	"github.com/taskdeck/taskdeck/internal/middleware"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/services"
	"github.com/taskdeck/taskdeck/internal/storage"
	"github.com/taskdeck/taskdeck/internal/web"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Users    *services.UserService
	Projects *services.ProjectService
	Tasks    *services.TaskService
	Authz    *policy.Authorizer
	Issuer   *auth.TokenIssuer
	Hub      *handlers.Hub

	// Registry receives the HTTP metrics and backs /api/metrics. A fresh one is used when nil.
	Registry *prometheus.Registry
}

func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Config

	r := gin.Default()
	r.MaxMultipartMemory = storage.MaxRequestBody

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r.Use(middleware.NewMetrics(registry).Handler())

	if cfg.StorageBackend == config.StorageDisk {
		r.Static("/uploads", cfg.UploadDir)
	}

	cookies := auth.CookieSettings{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Issuer, cookies)
	projectHandler := handlers.NewProjectHandler(deps.Projects)
	taskHandler := handlers.NewTaskHandler(deps.Tasks)

	authenticate := middleware.Authenticate(deps.Issuer)
	adminOnly := middleware.AuthorizeAdmin(deps.Authz)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck(deps.DB))
		api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/logout", authHandler.Logout)

		authed := api.Group("", authenticate)
		{
			authed.GET("/me", authHandler.Me)
			authed.GET("/users", authHandler.ListUsers)

			authed.GET("/ws/projects/:id", deps.Hub.Serve(deps.Projects))

			authed.GET("/projects", projectHandler.List)
			authed.POST("/projects", adminOnly, projectHandler.Create)
			authed.GET("/projects/:id", projectHandler.Get)
			authed.PUT("/projects/:id", adminOnly, projectHandler.Update)
			authed.DELETE("/projects/:id", adminOnly, projectHandler.Delete)
			authed.PATCH("/projects/:id/status", projectHandler.UpdateStatus)
			authed.POST("/projects/:id/categories", adminOnly, projectHandler.AddCategory)
			authed.DELETE("/projects/:id/categories/:categoryId", adminOnly, projectHandler.DeleteCategory)

			authed.POST("/tasks", adminOnly, taskHandler.Create)
			authed.GET("/tasks", taskHandler.List)
			authed.PATCH("/tasks/status", taskHandler.UpdateStatus)
			authed.GET("/tasks/:id", taskHandler.Get)
			authed.PUT("/tasks/:id", taskHandler.Update)
			authed.DELETE("/tasks/:id", taskHandler.Delete)
		}
	}

	web.NewHandler(web.Deps{
		Users:    deps.Users,
		Projects: deps.Projects,
		Tasks:    deps.Tasks,
		Authz:    deps.Authz,
		Issuer:   deps.Issuer,
		Cookies:  cookies,
	}).Register(r)

	return r
}
