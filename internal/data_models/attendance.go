package dto

import "time"

// AttendanceRequest clocks a user in or out. Date defaults to the day of Timestamp,
// Timestamp defaults to now.
type AttendanceRequest struct {
	UserID    string     `json:"userId" validate:"required"`
	Date      string     `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Timestamp *time.Time `json:"timestamp"`
}

type AttendanceQuery struct {
	UserID string `query:"userId"`
	Date   string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

type UserQuery struct {
	UserID string `query:"userId" validate:"required"`
}
