package main

import (
	"github.com/spf13/cobra"

	"gesrh/backend/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded SQL migrations (or roll back with --down N)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if down > 0 {
				return database.RollbackMigrations(e.sqlDB, down, e.logger)
			}
			return database.RunMigrations(e.sqlDB, e.logger)
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "Number of migrations to roll back")
	return cmd
}
