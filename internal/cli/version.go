package cli

import (
	"fmt"

	"timesheet-service/internal/app"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n", app.ServiceName, app.Version, app.GitCommit, app.BuildTime)
		},
	}
}
