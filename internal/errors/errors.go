// Package errors defines the HTTP error envelope shared by the server
// and its middleware, and the mapping from domain errors to status codes.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/3leaps/objfs/pkg/backend"
	"github.com/3leaps/objfs/pkg/objfs"
)

// ErrorDetail is the body of an error envelope.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HTTPErrorResponse is the JSON envelope for all error responses.
type HTTPErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// StatusError is an error carrying an explicit HTTP status and envelope
// detail. Handlers use it when the response is not derivable from a
// domain error, such as failed health checks.
type StatusError struct {
	Status int
	Detail ErrorDetail
}

func (e *StatusError) Error() string { return e.Detail.Message }

// WriteError writes an error envelope with the given status code.
func WriteError(w http.ResponseWriter, status int, detail ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{Error: detail})
}

// RespondWithError maps a domain error to an HTTP status and writes the
// envelope.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		WriteError(w, statusErr.Status, statusErr.Detail)
		return
	}

	status, code := classify(err)
	WriteError(w, status, ErrorDetail{
		Code:    code,
		Message: err.Error(),
	})
}

func classify(err error) (int, string) {
	switch {
	case objfs.IsNotFound(err):
		return http.StatusNotFound, "NOT_FOUND"
	case objfs.IsAlreadyExists(err):
		return http.StatusConflict, "ALREADY_EXISTS"
	case objfs.IsDirectoryNotEmpty(err):
		return http.StatusConflict, "DIRECTORY_NOT_EMPTY"
	case objfs.IsMissingParent(err):
		return http.StatusBadRequest, "MISSING_PARENT"
	case backend.IsAccessDenied(err):
		return http.StatusForbidden, "ACCESS_DENIED"
	case backend.IsThrottled(err):
		return http.StatusTooManyRequests, "THROTTLED"
	case backend.IsUnavailable(err):
		return http.StatusBadGateway, "BACKEND_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// NotFoundHandler is the router fallback for unknown paths.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, ErrorDetail{
		Code:    "NOT_FOUND",
		Message: "route not found: " + r.URL.Path,
	})
}

// MethodNotAllowedHandler is the router fallback for known paths with
// an unsupported method.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, ErrorDetail{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "method " + r.Method + " not allowed for " + r.URL.Path,
	})
}
