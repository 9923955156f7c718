package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoopslab/etl/internal/metrics"
	"hoopslab/etl/internal/warehouse"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newMetricsMux(nil), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHealth_Warehouse(t *testing.T) {
	wh, err := warehouse.OpenSQLite(context.Background(), warehouse.MemoryDSN)
	require.NoError(t, err)

	mux := newMetricsMux(wh)
	assert.Equal(t, http.StatusOK, get(t, mux, "/health").Code)

	require.NoError(t, wh.Close())
	rec := get(t, mux, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	metrics.RecordJob("nightly", "success", 0.5)

	rec := get(t, newMetricsMux(nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hoopslab_job_runs_total")
}
