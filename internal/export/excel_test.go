package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"worktracker.com/worktracker/internal/constants"
	model "worktracker.com/worktracker/internal/models"
)

func TestWorkbook_WriteTo(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(27 * time.Second)
	in := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)

	wb := Workbook{
		Entries: []model.TimeEntry{
			{ID: "e1", TaskID: "t1", UserID: "alice", StartTime: start, EndTime: &end, Duration: 0.45, Date: "2024-01-01"},
			{ID: "e2", TaskID: "gone", UserID: "bob", StartTime: start, EndTime: &end, Duration: 0.45, Date: "2024-01-01"},
		},
		TaskTitles: map[string]string{"t1": "Write report"},
		Attendance: []model.AttendanceRecord{
			{ID: "a1", UserID: "alice", Date: "2024-01-01", ClockIn: &in, ClockOut: &out, WorkHours: 8, Status: constants.AttendancePresent},
		},
	}

	var buf bytes.Buffer
	n, err := wb.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TimeEntriesSheet, AttendanceSheet}, f.GetSheetList())

	entries, err := f.GetRows(TimeEntriesSheet)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, timeEntryHeaders, entries[0])
	assert.Equal(t, "Write report", entries[1][1])
	assert.Equal(t, "gone", entries[2][1])
	assert.Equal(t, "0.45", entries[1][5])

	attendance, err := f.GetRows(AttendanceSheet)
	require.NoError(t, err)
	require.Len(t, attendance, 2)
	assert.Equal(t, "alice", attendance[1][1])
	assert.Equal(t, "8", attendance[1][4])
	assert.Equal(t, "present", attendance[1][5])
}

func TestWorkbook_EmptyHasHeadersOnly(t *testing.T) {
	var buf bytes.Buffer
	_, err := Workbook{}.WriteTo(&buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(AttendanceSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{attendanceHeaders}, rows)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWorkbook_WriteToReportsWriterErrors(t *testing.T) {
	_, err := Workbook{}.WriteTo(failingWriter{})
	assert.Error(t, err)
}
