package handlers

import (
	"errors"
	"net/http"

	"imagestudio/internal/domain"
	"imagestudio/internal/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps a failure kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail is the single place where core errors become HTTP responses. The
// body carries only the error's message; details go to the log.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	event := a.Logger.Debug()
	if status >= http.StatusInternalServerError {
		event = a.Logger.Error()
	}
	event.Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")
	a.json(w, status, errorResponse{Error: err.Error()})
}
