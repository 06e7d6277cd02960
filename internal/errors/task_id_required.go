package errors

import "net/http"

var ErrValidation = &Exception{
	Message:    "invalid request",
	StatusCode: http.StatusBadRequest,
}

var ErrTaskIDRequired = ErrValidation.WithMessage("task id is required")

var ErrUserNotAllowed = &Exception{
	Message:    "user is not allowed",
	StatusCode: http.StatusForbidden,
}
