package export

import (
	"fmt"
	"io"

	"timesheet-service/internal/timesheet"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Timesheets"

type ExcelWriter struct{}

func (w *ExcelWriter) Write(out io.Writer, timesheets []timesheet.Timesheet) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename excel sheet: %w", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, t := range timesheets {
		var createdAt any
		if t.CreatedAt != nil {
			createdAt = t.CreatedAt.String()
		}
		values := []any{t.ID, t.ProjectID, createdAt, t.Minutes}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if _, err := file.WriteTo(out); err != nil {
		return fmt.Errorf("write excel output: %w", err)
	}

	return nil
}
