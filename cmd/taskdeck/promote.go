package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/services"
	"github.com/taskdeck/taskdeck/internal/types"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Set a user's role directly in the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := cmd.Flags().GetString("role")
		if err != nil {
			return err
		}

		conn, err := openDatabase(config.Load())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		users, err := services.NewUserService(conn, auth.NewPasswordHasher())
		if err != nil {
			return err
		}

		user, err := users.SetRole(cmd.Context(), args[0], types.Role(strings.ToUpper(role)))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)

		return nil
	},
}

func init() {
	promoteCmd.Flags().String("role", string(types.RoleAdmin), "role to assign (ADMIN or MEMBER)")
}
