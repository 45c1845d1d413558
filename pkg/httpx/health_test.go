package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/catalog/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

func serveHealth(t *testing.T, checks ...httpx.Check) (*httptest.ResponseRecorder, httpx.HealthResponse) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.HealthHandler(checks...).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	var resp httpx.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr, resp
}

func TestHealthHandler(t *testing.T) {
	down := errors.New("conn refused")
	tests := []struct {
		name       string
		checks     []httpx.Check
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name: "all healthy",
			checks: []httpx.Check{
				{Name: "database", Checker: &stubChecker{}},
				{Name: "redis", Checker: &stubChecker{}},
				{Name: "event_bus", Checker: &stubChecker{}},
			},
			wantCode:   http.StatusOK,
			wantStatus: httpx.StatusOK,
			wantChecks: map[string]string{"database": "ok", "redis": "ok", "event_bus": "ok"},
		},
		{
			name: "database down",
			checks: []httpx.Check{
				{Name: "database", Checker: &stubChecker{err: down}},
				{Name: "redis", Checker: &stubChecker{}},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: httpx.StatusDegraded,
			wantChecks: map[string]string{"database": "unreachable", "redis": "ok"},
		},
		{
			name: "disabled dependency does not degrade",
			checks: []httpx.Check{
				{Name: "database", Checker: &stubChecker{}},
				{Name: "redis"},
			},
			wantCode:   http.StatusOK,
			wantStatus: httpx.StatusOK,
			wantChecks: map[string]string{"database": "ok", "redis": "disabled"},
		},
		{
			name: "all down",
			checks: []httpx.Check{
				{Name: "database", Checker: &stubChecker{err: down}},
				{Name: "event_bus", Checker: &stubChecker{err: down}},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: httpx.StatusDegraded,
			wantChecks: map[string]string{"database": "unreachable", "event_bus": "unreachable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := serveHealth(t, tt.checks...)
			if rr.Code != tt.wantCode {
				t.Fatalf("code: got %d, want %d", rr.Code, tt.wantCode)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status: got %q, want %q", resp.Status, tt.wantStatus)
			}
			for name, want := range tt.wantChecks {
				if got := resp.Checks[name]; got != want {
					t.Errorf("%s: got %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestHealthHandler_ContentType(t *testing.T) {
	rr, _ := serveHealth(t, httpx.Check{Name: "database", Checker: &stubChecker{}})

	ct := rr.Header().Get("Content-Type")
	if ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json; charset=utf-8")
	}
}

func TestPing(t *testing.T) {
	rr := httptest.NewRecorder()
	httpx.Ping(rr, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != "{\"message\":\"Server is Running!\"}\n" {
		t.Errorf("body: got %q", got)
	}
}
