package errors

import "net/http"

var ErrInvalidState = &Exception{
	Message:    "invalid state",
	StatusCode: http.StatusConflict,
}

var (
	ErrAlreadyClockedIn      = ErrInvalidState.WithMessage("already clocked in today")
	ErrNotClockedIn          = ErrInvalidState.WithMessage("not clocked in today")
	ErrClockOutBeforeClockIn = ErrInvalidState.WithMessage("clock-out is before clock-in")
)
