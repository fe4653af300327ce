package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/samcharles93/mobiless/internal/metrics"
)

func TestObserve(t *testing.T) {
	initialFiles := testutil.ToFloat64(metrics.FilesProcessed.WithLabelValues(metrics.ResultStripped))
	initialBytes := testutil.ToFloat64(metrics.BytesRemoved)
	initialSections := testutil.ToFloat64(metrics.SectionsRemoved)

	metrics.Observe(metrics.ResultStripped, 2, 300, 0.01)
	metrics.Observe(metrics.ResultUnchanged, 0, 0, 0.01)

	if got := testutil.ToFloat64(metrics.FilesProcessed.WithLabelValues(metrics.ResultStripped)); got != initialFiles+1 {
		t.Fatalf("FilesProcessed expected %v, got %v", initialFiles+1, got)
	}
	if got := testutil.ToFloat64(metrics.BytesRemoved); got != initialBytes+300 {
		t.Fatalf("BytesRemoved expected %v, got %v", initialBytes+300, got)
	}
	if got := testutil.ToFloat64(metrics.SectionsRemoved); got != initialSections+2 {
		t.Fatalf("SectionsRemoved expected %v, got %v", initialSections+2, got)
	}
}

func TestHandler(t *testing.T) {
	metrics.Observe(metrics.ResultInvalid, 0, 0, 0.001)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `mobiless_files_processed_total{result="invalid"}`) {
		t.Fatalf("expected files counter in exposition, got:\n%s", rec.Body.String())
	}
}
