package httpx

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// Check status values reported by HealthHandler.
const (
	StatusOK          = "ok"
	StatusDegraded    = "degraded"
	StatusUnreachable = "unreachable"
	StatusDisabled    = "disabled"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (Database, RedisClient and EventBus all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Check names one probed dependency. A nil Checker is reported as disabled
// and does not degrade the service.
type Check struct {
	Name    string
	Checker HealthChecker
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
} // @name HealthResponse

// HealthHandler probes every check and answers 503 when any of them fails.
func HealthHandler(checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := HealthResponse{Status: StatusOK, Checks: make(map[string]string, len(checks))}
		for _, c := range checks {
			switch {
			case c.Checker == nil:
				resp.Checks[c.Name] = StatusDisabled
			case c.Checker.Ping(ctx) != nil:
				resp.Checks[c.Name] = StatusUnreachable
				resp.Status = StatusDegraded
			default:
				resp.Checks[c.Name] = StatusOK
			}
		}

		status := http.StatusOK
		if resp.Status != StatusOK {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

type pingResponse struct {
	Message string `json:"message"`
}

// Ping answers the liveness probe with a fixed message.
func Ping(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, pingResponse{Message: "Server is Running!"})
}
