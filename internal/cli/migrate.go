package cli

import (
	"fmt"

	"timesheet-service/internal/db"

	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the timesheets table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			database, err := db.New(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close(database)

			if err := db.RunMigrations(cmd.Context(), database); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied. Driver: %s\n", cfg.Database.Driver)
			return nil
		},
	}
}
