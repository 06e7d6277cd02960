package errors

import (
	"errors"
	"net/http"
)

// Exception is an error kind with the HTTP status it surfaces as.
// Wrap and WithMessage derive errors that match every ancestor kind under errors.Is.
type Exception struct {
	Message    string
	StatusCode int
	Err        error

	kind *Exception
}

func (e *Exception) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Exception) Unwrap() error {
	return e.Err
}

func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	for k := e; k != nil; k = k.kind {
		if k == t {
			return true
		}
	}
	return false
}

func (e *Exception) Wrap(err error) *Exception {
	return &Exception{Message: e.Message, StatusCode: e.StatusCode, Err: err, kind: e}
}

func (e *Exception) WithMessage(message string) *Exception {
	return &Exception{Message: message, StatusCode: e.StatusCode, Err: e.Err, kind: e}
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing message, hiding causes of internal failures.
func Message(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) {
		if appErr.StatusCode >= http.StatusInternalServerError {
			return appErr.Message
		}
		return appErr.Error()
	}
	return "internal error"
}
