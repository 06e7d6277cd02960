package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "worktracker.com/worktracker/internal/data_models"
	apperrors "worktracker.com/worktracker/internal/errors"
)

func TestRequestValidator(t *testing.T) {
	v := NewRequestValidator()

	tests := []struct {
		name    string
		req     any
		wantMsg string
	}{
		{
			name: "valid timer request",
			req:  &dto.TimerRequest{UserID: "alice", TaskID: "t1"},
		},
		{
			name:    "missing task id",
			req:     &dto.TimerRequest{UserID: "alice"},
			wantMsg: "Field 'taskId' is required",
		},
		{
			name:    "bad status",
			req:     &dto.UpdateTaskStatusRequest{Status: "archived"},
			wantMsg: "Field 'status' must be one of [pending in_progress completed]",
		},
		{
			name:    "bad date",
			req:     &dto.AttendanceRequest{UserID: "alice", Date: "01/02/2024"},
			wantMsg: "Field 'date' must be a date in 2006-01-02 format",
		},
		{
			name:    "query tag names",
			req:     &dto.TimeEntryQuery{From: "yesterday"},
			wantMsg: "Field 'from' must be a date in 2006-01-02 format",
		},
		{
			name:    "negative estimate",
			req:     &dto.CreateTaskRequest{Title: "T", EstimatedHours: -1},
			wantMsg: "Field 'estimatedHours' must be at least 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Equal(t, tt.wantMsg, apperrors.Message(err))
		})
	}
}

func TestUserAllowlist(t *testing.T) {
	allowed := NewUserAllowlist([]string{" alice ", "bob", ""})

	assert.NoError(t, allowed.Check("alice"))
	assert.NoError(t, allowed.Check("bob"))
	assert.ErrorIs(t, allowed.Check("mallory"), apperrors.ErrUserNotAllowed)

	assert.NoError(t, NewUserAllowlist(nil).Check("anyone"))
}
