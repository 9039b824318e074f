package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/taskdeck/taskdeck/db"
	"github.com/taskdeck/taskdeck/internal/config"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:          "taskdeck",
	Short:        "Project and task tracker",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Error loading .env file, skipping", slog.Any("error", err))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is not set")
	}

	return db.ConnectDatabase(cfg.DBDriver, cfg.DatabaseURL)
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, promoteCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
