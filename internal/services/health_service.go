package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/s22a0058-ai/FYP/pkg/contracts"
)

// Checker is a dependency that can report whether it is serving.
type Checker interface {
	Healthy(ctx context.Context) error
}

// ClientCounter reports connected websocket clients, for the stats view.
type ClientCounter interface {
	ClientCount() int
}

// HealthService answers liveness and readiness probes over the service
// dependencies: the dataset source and the feedback store.
type HealthService struct {
	dataset   Checker
	feedback  Checker
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the probe response shape.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth is the per-dependency slice of a readiness response.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemStats reports process-level numbers for the admin dashboard.
type SystemStats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	WebSocketClients int     `json:"websocket_clients"`
	Goroutines       int     `json:"goroutines"`
	GoVersion        string  `json:"go_version"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
}

// NewHealthService creates a health service over the given dependencies. Any
// of them may be nil; nil dependencies are skipped in readiness checks.
func NewHealthService(dataset, feedback Checker, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		dataset:   dataset,
		feedback:  feedback,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Liveness reports that the process is up. It never touches dependencies.
func (hs *HealthService) Liveness(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.GetVersionString(),
		Uptime:    time.Since(hs.startTime).String(),
	}
}

// Readiness checks every dependency and reports degraded when any fails.
func (hs *HealthService) Readiness(ctx context.Context) HealthStatus {
	status := hs.Liveness(ctx)
	status.Services = make(map[string]ServiceHealth, 2)

	status.Services["dataset"] = hs.check(ctx, hs.dataset)
	status.Services["feedback"] = hs.check(ctx, hs.feedback)

	for name, svc := range status.Services {
		if svc.Status == "unavailable" {
			status.Status = "degraded"
			hs.logger.Warn("readiness check failed",
				slog.String("service", name),
				slog.String("message", svc.Message))
		}
	}
	return status
}

// Stats returns process statistics for the admin dashboard.
func (hs *HealthService) Stats(ctx context.Context) SystemStats {
	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.clients != nil {
		stats.WebSocketClients = hs.clients.ClientCount()
	}
	return stats
}

func (hs *HealthService) check(ctx context.Context, c Checker) ServiceHealth {
	if c == nil {
		return ServiceHealth{Status: "skipped"}
	}
	if err := c.Healthy(ctx); err != nil {
		return ServiceHealth{Status: "unavailable", Message: err.Error()}
	}
	return ServiceHealth{Status: "ok"}
}
