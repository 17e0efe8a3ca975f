package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s22a0058-ai/FYP/internal/services"
)

type fakeHealthService struct {
	ready bool
}

func (f *fakeHealthService) Liveness(ctx context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "ok", Version: "test"}
}

func (f *fakeHealthService) Readiness(ctx context.Context) services.HealthStatus {
	if f.ready {
		return services.HealthStatus{Status: "ok", Version: "test"}
	}
	return services.HealthStatus{
		Status: "degraded",
		Services: map[string]services.ServiceHealth{
			"dataset": {Status: "unavailable", Message: "dataset source unavailable"},
		},
	}
}

func (f *fakeHealthService) Stats(ctx context.Context) services.SystemStats {
	return services.SystemStats{WebSocketClients: 2}
}

func TestHealthHandlerLiveness(t *testing.T) {
	router := NewHealthHandler(&fakeHealthService{ready: true}).Routes()

	for _, path := range []string{"/", "/live"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"ok"`)
	}
}

func TestHealthHandlerReadiness(t *testing.T) {
	router := NewHealthHandler(&fakeHealthService{ready: true}).Routes()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	router = NewHealthHandler(&fakeHealthService{ready: false}).Routes()
	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestHealthHandlerStats(t *testing.T) {
	router := NewHealthHandler(&fakeHealthService{}).Routes()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"websocket_clients":2`)
}

func TestHealthHandlerVersion(t *testing.T) {
	handler := NewHealthHandler(&fakeHealthService{})
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	handler.Version(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"api_version":"v1"`)
}
