package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/gigpilot/gigpilot/internal/api/middleware"
)

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	cfg := middleware.RateLimitConfig{RequestLimit: 3, WindowLength: time.Minute}
	handler := middleware.RateLimitByIP(cfg)(okHandler())

	testIP := "10.0.0.1:12345"
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
		req.RemoteAddr = testIP
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	req.RemoteAddr = testIP
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	other.RemoteAddr = "10.0.0.2:12345"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func userLimitedRouter(cfg middleware.RateLimitConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.With(middleware.RateLimitByUser(cfg)).Get("/v1/opportunities/{userId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestRateLimitByUser_KeysOnUserIDAcrossIPs(t *testing.T) {
	handler := userLimitedRouter(middleware.RateLimitConfig{RequestLimit: 2, WindowLength: time.Minute})

	call := func(user, ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/opportunities/"+user, http.NoBody)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("rider-1", "192.168.1.1:1000"))
	assert.Equal(t, http.StatusOK, call("rider-1", "192.168.1.2:1000"))
	assert.Equal(t, http.StatusTooManyRequests, call("rider-1", "192.168.1.3:1000"))

	assert.Equal(t, http.StatusOK, call("rider-2", "192.168.1.1:1000"))
}

func TestRateLimitExceededResponse_Format(t *testing.T) {
	handler := userLimitedRouter(middleware.RateLimitConfig{RequestLimit: 1, WindowLength: 30 * time.Second})

	req := httptest.NewRequest(http.MethodGet, "/v1/opportunities/rider-9", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/opportunities/rider-9", http.NoBody)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	body := rec.Body.String()
	assert.Contains(t, body, "too-many-requests")
	assert.Contains(t, body, "/v1/opportunities/rider-9")
	assert.Contains(t, body, "req_")
}

func TestDefaultRateLimitConfigs(t *testing.T) {
	assert.Equal(t, 30, middleware.OpportunityRateLimit.RequestLimit)
	assert.Equal(t, time.Minute, middleware.OpportunityRateLimit.WindowLength)
	assert.Equal(t, 120, middleware.OpsRateLimit.RequestLimit)
}
