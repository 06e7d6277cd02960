package model

import (
	"time"

	"worktracker.com/worktracker/internal/constants"
)

type AttendanceRecord struct {
	ID            string                     `json:"id"`
	UserID        string                     `json:"userId"`
	Date          string                     `json:"date"`
	ClockIn       *time.Time                 `json:"clockIn,omitempty"`
	ClockOut      *time.Time                 `json:"clockOut,omitempty"`
	WorkHours     float64                    `json:"workHours"`
	BreakDuration int                        `json:"breakDuration"`
	Status        constants.AttendanceStatus `json:"status,omitempty"`
	Approved      bool                       `json:"approved"`
	Notes         string                     `json:"notes,omitempty"`
}

// Valid reports whether the record has a clock-in. Records without one are corrupt.
func (r AttendanceRecord) Valid() bool {
	return r.ClockIn != nil && !r.ClockIn.IsZero()
}

func (r AttendanceRecord) Open() bool {
	return r.Valid() && r.ClockOut == nil
}

// Hours recomputes worked hours from the timestamps, minus the break.
// Falls back to the cached WorkHours when the record is not closed.
func (r AttendanceRecord) Hours() float64 {
	if !r.Valid() || r.ClockOut == nil {
		return r.WorkHours
	}
	hours := r.ClockOut.Sub(*r.ClockIn).Hours() - float64(r.BreakDuration)/60
	if hours < 0 {
		return 0
	}
	return hours
}
