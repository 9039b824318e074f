package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/taskdeck/taskdeck/db"
	"github.com/taskdeck/taskdeck/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDatabase(config.Load())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.MigrateDatabase(conn); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		slog.Info("Database migrated")

		return nil
	},
}
