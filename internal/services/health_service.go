package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"secustats/internal/dataset"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	store     *dataset.Store
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// VersionInfo represents build information
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, store *dataset.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		store:     store,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Health reports the overall service health, including dataset availability.
func (hs *HealthService) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
		},
		Services: map[string]interface{}{},
	}

	ds := hs.datasetHealth(ctx)
	status.Services["dataset"] = ds
	if ds.Status != "up" {
		// The dashboard can still serve its page; only the data endpoints
		// are affected.
		status.Status = "degraded"
	}

	return status
}

// Ready reports whether the service can answer data requests: the dataset
// file must be present and parseable.
func (hs *HealthService) Ready(ctx context.Context) (bool, ServiceHealth) {
	ds := hs.datasetHealth(ctx)
	return ds.Status == "up", ds
}

// Version returns the build information.
func (hs *HealthService) Version() VersionInfo {
	return VersionInfo{
		Version:   hs.version,
		BuildTime: hs.buildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

func (hs *HealthService) datasetHealth(ctx context.Context) ServiceHealth {
	d, err := hs.store.Get(ctx)
	if err != nil {
		return ServiceHealth{Status: "down", Message: err.Error()}
	}
	if d.Len() == 0 {
		return ServiceHealth{Status: "down", Message: ErrNoData.Error()}
	}
	return ServiceHealth{Status: "up"}
}
