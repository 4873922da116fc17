package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"webpanel/internal/panel"
	"webpanel/internal/uiloop"
	"webpanel/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusFor maps registry errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case panel.IsInstanceNotFound(err):
		return http.StatusNotFound
	case panel.IsInvalidURL(err), panel.IsInvalidRequest(err):
		return http.StatusBadRequest
	case panel.IsEngineUnavailable(err), errors.Is(err, panel.ErrClosed), errors.Is(err, uiloop.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &he):
		return he.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}
