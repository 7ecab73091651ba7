package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"timesheet-service/internal/db"
	"timesheet-service/internal/export"
	"timesheet-service/internal/metrics"
	"timesheet-service/internal/timesheet"

	"github.com/spf13/cobra"
)

func newExportCommand(opts *options) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all timesheets to CSV or Excel",
		Long: `Export every stored timesheet ordered by id.

Output format can be selected explicitly via --format or inferred from the --output extension.
With --output - the export is written to stdout.`,
		Example: `
  # Export to CSV
  timesheet-service export --output ./timesheets.csv

  # Export to Excel
  timesheet-service export --output ./timesheets.xlsx

  # Pipe CSV to another tool
  timesheet-service export --format csv --output - | column -s, -t
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(format) == "" {
				format = detectExportFormat(output)
			}

			writer, err := export.WriterForFormat(format)
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			database, err := db.New(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close(database)

			timesheets, err := timesheet.NewRepository(database, metrics.NewMock()).FindAll(cmd.Context())
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output %s: %w", output, err)
				}
				defer file.Close()
				out = file
			}

			if err := writer.Write(out, timesheets); err != nil {
				return err
			}

			if output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Export completed. Rows: %d, Format: %s, File: %s\n", len(timesheets), format, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path, or - for stdout")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "xlsx", "xlsm":
		return "excel"
	default:
		return "csv"
	}
}
