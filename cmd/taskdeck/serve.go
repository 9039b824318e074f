package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/taskdeck/taskdeck/db"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/handlers"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/response"
	"github.com/taskdeck/taskdeck/internal/router"
	"github.com/taskdeck/taskdeck/internal/services"
	"github.com/taskdeck/taskdeck/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		if err := cfg.Validate(); err != nil {
			return err
		}

		if cfg.GinMode != "" {
			gin.SetMode(cfg.GinMode)
		}

		response.ExposeCause = cfg.ExposeErrorCause

		conn, err := openDatabase(cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.MigrateDatabase(conn); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		store, err := newStore(cfg)
		if err != nil {
			return err
		}

		hub := handlers.NewHub(cfg.AllowedOrigins)
		hooks := services.Hooks{ProjectChanged: hub.ProjectChanged}

		if cfg.AssignmentWebhookURL != "" {
			notifier := services.NewAssignmentNotifier(cfg.AssignmentWebhookURL, cfg.AssignmentWebhookKind, cfg.PublicBaseURL)
			hooks.ProjectAssigned = notifier.Hook()
		}

		users, err := services.NewUserService(conn, auth.NewPasswordHasher())
		if err != nil {
			return err
		}

		issuer, err := auth.NewTokenIssuer(cfg.JWTSecret)
		if err != nil {
			return err
		}

		authz := policy.NewAuthorizer(users)

		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		r := router.NewRouter(router.Deps{
			Config:   cfg,
			DB:       conn,
			Users:    users,
			Projects: services.NewProjectService(conn, authz, storage.NewUploader(store), hooks),
			Tasks:    services.NewTaskService(conn, authz, hooks),
			Authz:    authz,
			Issuer:   issuer,
			Hub:      hub,
			Registry: registry,
		})

		server := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)

		go func() {
			slog.Info("Server listening", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageBackend))
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to start server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	},
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageSupabase:
		return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket), nil
	case config.StorageDisk:
		store, err := storage.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
		if err != nil {
			return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
