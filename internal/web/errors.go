package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request ID, then
// returned to the client as a JSON ErrorResponse built from core.MapError.
// statusFor picks the HTTP status from the error chain.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/logging"
)

// errNoFile is returned when a request carries no CSV payload.
var errNoFile = errors.New("no file provided")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes its user-facing form. A zero
// statusCode is resolved with statusFor.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if statusCode == 0 {
		statusCode = statusFor(err)
	}
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	logArgs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", logArgs...)
	} else {
		logger.Warn("request error", logArgs...)
	}

	if errors.Is(err, core.ErrTooManyUploads) {
		w.Header().Set("Retry-After", "5")
	}

	writeJSONStatus(w, statusCode, ErrorResponse{
		Error:   err.Error(),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps an error chain to an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	var parseErr *core.ParseError

	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNoItemStore):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.As(err, &parseErr),
		errors.Is(err, core.ErrEmptyCSV),
		errors.Is(err, core.ErrMissingColumn),
		errors.Is(err, core.ErrColumnNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoFile),
		errors.Is(err, errInvalidForm),
		errors.Is(err, errInvalidParam),
		errors.Is(err, core.ErrFileRead),
		errors.Is(err, core.ErrInvalidDatasetID),
		errors.Is(err, core.ErrInputMappingRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
