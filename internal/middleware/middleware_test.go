package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/handlers"
	"golang.org/x/time/rate"
)

func TestWrap_InjectsTraceId(t *testing.T) {
	handlers.InitHandlers(handlers.Services{})

	var seenTrace string
	wrapped := Wrap(func(w http.ResponseWriter, r *http.Request) {
		seenTrace, _ = r.Context().Value(config.TRACE_ID_KEY).(string)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("generates a trace id when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		wrapped(httptest.NewRecorder(), req)
		if seenTrace == "" {
			t.Error("expected a generated trace id in the request context")
		}
	})

	t.Run("keeps the caller trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace-Id", "caller-trace")
		wrapped(httptest.NewRecorder(), req)
		if seenTrace != "caller-trace" {
			t.Errorf("trace id = %q; want caller-trace", seenTrace)
		}
	})
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2)

	if !limiter.GetLimiter("10.0.0.1").Allow() || !limiter.GetLimiter("10.0.0.1").Allow() {
		t.Fatal("burst budget should allow the first two requests")
	}
	if limiter.GetLimiter("10.0.0.1").Allow() {
		t.Error("third immediate request should be limited")
	}
	// A different client has its own budget.
	if !limiter.GetLimiter("10.0.0.2").Allow() {
		t.Error("separate IPs must not share a limiter")
	}
}
