package errors

import "net/http"

var ErrExport = &Exception{
	Message:    "failed to build export",
	StatusCode: http.StatusInternalServerError,
}
