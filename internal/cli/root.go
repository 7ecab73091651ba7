package cli

import (
	"io"

	"timesheet-service/internal/config"

	"github.com/spf13/cobra"
)

type options struct {
	configFile string
}

func (o *options) loadConfig() (*config.Config, error) {
	if o.configFile != "" {
		return config.LoadFile(o.configFile)
	}
	return config.Load()
}

// NewRootCommand builds the timesheet-service command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "timesheet-service",
		Short: "Timesheet CRUD service",
		Long: `Records timesheet entries (project, day, minutes worked) and serves them over HTTP.

Configuration is read from configs/config.<ENV>.yaml (ENV defaults to "local")
and can be overridden with environment variables such as DB_HOST or PORT.`,
		Example: `
  # Run the HTTP API
  timesheet-service serve

  # Run against a local SQLite file
  timesheet-service serve --config configs/config.sqlite.yaml

  # Create the schema without starting the server
  timesheet-service migrate

  # Export all timesheets to Excel
  timesheet-service export --output ./timesheets.xlsx
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file override (default discovery: configs/config.<ENV>.yaml)")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newExportCommand(opts),
		newTokenCommand(opts),
		newVersionCommand(),
	)

	return root
}

// Execute runs the root command with the given arguments.
func Execute(args []string, out io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	return root.Execute()
}
