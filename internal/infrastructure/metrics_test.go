package infrastructure

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDatasetLoad(t *testing.T) {
	m := NewMetrics()

	m.ObserveDatasetLoad(1200, 7, nil)
	assert.Equal(t, float64(1200), testutil.ToFloat64(m.DatasetRowsLoaded))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.DatasetRowsRejected))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DatasetLoadsTotal.WithLabelValues("success")))

	m.ObserveDatasetLoad(0, 0, errors.New("boom"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DatasetLoadsTotal.WithLabelValues("error")))
	// Gauges keep the last successful load.
	assert.Equal(t, float64(1200), testutil.ToFloat64(m.DatasetRowsLoaded))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/data/overview", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "secustats_http_requests_total")
	assert.Contains(t, body, `route="/api/data/overview"`)
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide: each carries its own registry.
	a := NewMetrics()
	b := NewMetrics()
	a.DatasetRowsLoaded.Set(10)
	b.DatasetRowsLoaded.Set(20)
	assert.Equal(t, float64(10), testutil.ToFloat64(a.DatasetRowsLoaded))
	assert.Equal(t, float64(20), testutil.ToFloat64(b.DatasetRowsLoaded))
}
