package errors

import "net/http"

var ErrPersistence = &Exception{
	Message:    "failed to persist data",
	StatusCode: http.StatusInternalServerError,
}
