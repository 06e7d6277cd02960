package errors

import "net/http"

var ErrConflict = &Exception{
	Message:    "document was modified concurrently, retry the request",
	StatusCode: http.StatusConflict,
}
