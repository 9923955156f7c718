package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordJob(t *testing.T) {
	before := testutil.ToFloat64(JobRunsTotal.WithLabelValues("metrics_test", "success"))

	RecordJob("metrics_test", "success", 1.5)

	assert.Equal(t, before+1, testutil.ToFloat64(JobRunsTotal.WithLabelValues("metrics_test", "success")))
	assert.Greater(t, testutil.ToFloat64(LastSuccessfulRun.WithLabelValues("metrics_test")), 0.0)
}

func TestRecordRowsWritten(t *testing.T) {
	RecordRowsWritten("leagues", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(RowsWritten.WithLabelValues("leagues")))

	RecordRowsWritten("leagues", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(RowsWritten.WithLabelValues("leagues")))
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	RecordJob("nightly", "success", 0.2)
	require.NoError(t, Push(context.Background(), srv.URL, "nightly"))

	assert.Equal(t, "/metrics/job/nightly", gotPath)
	assert.True(t, strings.Contains(gotBody, "hoopslab_job_runs_total"))
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Push(context.Background(), srv.URL, "nightly")
	assert.Error(t, err)
}
