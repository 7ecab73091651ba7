package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"timesheet-service/internal/timesheet"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(out io.Writer, timesheets []timesheet.Timesheet) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, t := range timesheets {
		if err := writer.Write(row(t)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
