// Package errhttp maps catalog domain errors to HTTP responses.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/catalog/pkg/httpx"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/telemetry"
	"github.com/ghuser/catalog/services/catalog/domain"
)

// Responder writes errors as {"success":false,"message":...}. In production
// the message of a 5xx is replaced with the status text.
type Responder struct {
	production bool
	log        logger.Logger
}

// New returns a Responder. log may be nil.
func New(production bool, log logger.Logger) *Responder {
	return &Responder{production: production, log: log}
}

// Write maps err to a status with errors.Is so wrapped sentinels match, and
// writes the response. Unrecognized errors are 500; they are logged and
// reported to Sentry.
func (e *Responder) Write(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		if e.log != nil {
			e.log.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		}
		telemetry.CaptureError(r.Context(), err)
	}

	msg := httpx.SafeError(err, status, e.production)
	var ve *domain.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		httpx.JSONFieldError(w, status, msg, ve.Fields)
		return
	}
	httpx.JSONError(w, status, msg)
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
