package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secustats/internal/config"
	"secustats/internal/dataset"
	"secustats/internal/infrastructure"
	"secustats/internal/services"
)

const testCSV = "Unite_temps;Zone_geographique;Valeurs;Indicateur\n" +
	"2022;75-Paris;100;Cambriolages\n" +
	"2023;75-Paris;110;Cambriolages\n" +
	"2022;13-Marseille;80;Cambriolages\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTestDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "serieschrono-datagouv.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	return path
}

// newTestApplication assembles an Application without going through
// NewApplication, which would read the environment and log to disk.
func newTestApplication(t *testing.T, cfg *config.Config) *Application {
	t.Helper()

	logger := discardLogger()
	store := dataset.NewStore(writeTestDataset(t), dataset.Options{
		Delimiter: ';',
		Encoding:  "latin-1",
	}, logger)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Metrics:       infrastructure.NewMetrics(),
		Store:         store,
		DataService:   services.NewDataServiceWithLogger(store, logger),
		HealthService: services.NewHealthService(VERSION, BuildTime, store, logger),
		WebFS: fstest.MapFS{
			"index.html":    {Data: []byte("<!DOCTYPE html><title>SecuStats</title>")},
			"static/app.js": {Data: []byte("// dashboard")},
		},
	}
	app.setupRouter()
	return app
}

func TestGenerateBuildID(t *testing.T) {
	id := generateBuildID()
	assert.Len(t, id, 12)
	for _, c := range id {
		assert.Contains(t, "0123456789abcdef", string(c))
	}
	// Deterministic for a given version and day.
	assert.Equal(t, id, generateBuildID())
}

func TestDatasetHint(t *testing.T) {
	hint := DatasetHint(nil)
	assert.Contains(t, hint, "serieschrono-datagouv.csv")
	assert.Contains(t, hint, "data.gouv.fr")

	cfg := config.Default()
	cfg.Dataset.File = "export-2024.csv"
	assert.Contains(t, DatasetHint(cfg), "export-2024.csv")
}

func TestGetCORSConfig(t *testing.T) {
	t.Run("appends self origin", func(t *testing.T) {
		cfg := config.Default()
		cfg.Server.Port = 9090
		cfg.Security.AllowedOrigins = []string{"https://stats.example.org"}

		app := &Application{Config: cfg, Logger: discardLogger()}
		cors := app.getCORSConfig()

		assert.Contains(t, cors.AllowedOrigins, "https://stats.example.org")
		assert.Contains(t, cors.AllowedOrigins, "http://localhost:9090")
	})

	t.Run("wildcard already covers self", func(t *testing.T) {
		cfg := config.Default()
		cfg.Security.AllowedOrigins = []string{"*"}

		app := &Application{Config: cfg, Logger: discardLogger()}
		cors := app.getCORSConfig()

		assert.Equal(t, []string{"*"}, cors.AllowedOrigins)
	})
}

func TestRouterEndpoints(t *testing.T) {
	cfg := config.Default()
	cfg.Security.EnableCORS = false
	cfg.Security.RateLimit.Enabled = false
	app := newTestApplication(t, cfg)

	get := func(t *testing.T, path string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("liveness", func(t *testing.T) {
		rec := get(t, "/api/health/live")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("version", func(t *testing.T) {
		rec := get(t, "/api/version")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), VERSION)
	})

	t.Run("overview", func(t *testing.T) {
		rec := get(t, "/api/data/overview")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		assert.Contains(t, rec.Body.String(), `"records":3`)
		assert.Contains(t, rec.Body.String(), `"indicators":1`)
		assert.Contains(t, rec.Body.String(), `"departments":2`)
	})

	t.Run("indicators", func(t *testing.T) {
		rec := get(t, "/api/data/indicators")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Cambriolages")
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rec := get(t, "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "secustats_")
	})

	t.Run("frontend index", func(t *testing.T) {
		rec := get(t, "/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "SecuStats")
	})

	t.Run("static asset cached", func(t *testing.T) {
		rec := get(t, "/static/app.js")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	})

	t.Run("unknown API route", func(t *testing.T) {
		rec := get(t, "/api/data/nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("request id header set", func(t *testing.T) {
		rec := get(t, "/api/health/live")
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestCreateServer(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 8123
	app := &Application{Config: cfg, Logger: discardLogger()}
	app.createServer()

	require.NotNil(t, app.Server)
	assert.Equal(t, ":8123", app.Server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, cfg.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.True(t, strings.HasPrefix(app.Server.Addr, ":"))
}
