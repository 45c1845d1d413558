package httpx

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as JSON with the given status code. Content-Type and
// X-Content-Type-Options headers are set automatically. Encoding errors are
// silently discarded. Use this for handler responses, not for streaming.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Success bool              `json:"success" example:"false"`
	Message string            `json:"message" example:"category not found"`
	Fields  map[string]string `json:"fields,omitempty"`
} // @name ErrorBody

// JSONError writes {"success":false,"message":message}.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Message: message})
}

// JSONFieldError is JSONError with per-field reasons attached.
func JSONFieldError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	JSON(w, status, ErrorBody{Message: message, Fields: fields})
}

// SafeError returns the error message for client responses.
// In production (isProduction=true), internal server errors (5xx) are replaced
// with a generic message to avoid leaking implementation details.
func SafeError(err error, status int, isProduction bool) string {
	if isProduction && status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}
