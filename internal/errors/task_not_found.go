package errors

import "net/http"

var ErrNotFound = &Exception{
	Message:    "not found",
	StatusCode: http.StatusNotFound,
}

var ErrTaskNotFound = ErrNotFound.WithMessage("task not found")
