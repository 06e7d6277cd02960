package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	model "worktracker.com/worktracker/internal/models"
)

const (
	TimeEntriesSheet = "Time Entries"
	AttendanceSheet  = "Attendance"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	timeEntryHeaders  = []string{"Date", "Task", "User", "Start", "End", "Minutes"}
	attendanceHeaders = []string{"Date", "User", "Clock In", "Clock Out", "Work Hours", "Status"}
)

// Workbook is the xlsx export: one sheet of time entries, one of attendance records.
type Workbook struct {
	Entries    []model.TimeEntry
	TaskTitles map[string]string
	Attendance []model.AttendanceRecord
}

// WriteTo renders the workbook and streams it to w.
func (wb Workbook) WriteTo(w io.Writer) (int64, error) {
	f, err := wb.build()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return f.WriteTo(w)
}

func (wb Workbook) build() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", TimeEntriesSheet); err != nil {
		return nil, fmt.Errorf("error renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(AttendanceSheet); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}

	rows := make([][]any, 0, len(wb.Entries))
	for _, e := range wb.Entries {
		title := wb.TaskTitles[e.TaskID]
		if title == "" {
			title = e.TaskID
		}
		rows = append(rows, []any{e.Date, title, e.UserID, formatTime(&e.StartTime), formatTime(e.EndTime), e.Minutes()})
	}
	if err := writeSheet(f, TimeEntriesSheet, timeEntryHeaders, rows); err != nil {
		return nil, err
	}

	rows = rows[:0]
	for _, r := range wb.Attendance {
		rows = append(rows, []any{r.Date, r.UserID, formatTime(r.ClockIn), formatTime(r.ClockOut), r.Hours(), string(r.Status)})
	}
	if err := writeSheet(f, AttendanceSheet, attendanceHeaders, rows); err != nil {
		return nil, err
	}

	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("error writing %s header: %w", sheet, err)
		}
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("error writing %s row %d: %w", sheet, r+2, err)
		}
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
