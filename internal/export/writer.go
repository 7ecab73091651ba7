package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"timesheet-service/internal/timesheet"
)

var headers = []string{"ID", "ProjectID", "CreatedAt", "Minutes"}

type Writer interface {
	Write(out io.Writer, timesheets []timesheet.Timesheet) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

func row(t timesheet.Timesheet) []string {
	createdAt := ""
	if t.CreatedAt != nil {
		createdAt = t.CreatedAt.String()
	}
	return []string{
		strconv.FormatInt(t.ID, 10),
		strconv.FormatInt(t.ProjectID, 10),
		createdAt,
		strconv.Itoa(t.Minutes),
	}
}
