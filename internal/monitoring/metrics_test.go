// internal/monitoring/metrics_test.go
package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDetection(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{})

	mm.RecordDetection("youtube", "video", 120*time.Millisecond)
	mm.RecordDetection("youtube", "video", 80*time.Millisecond)
	mm.RecordDetection("github", "repository", 10*time.Millisecond)

	if got := testutil.ToFloat64(mm.detectionsTotal.WithLabelValues("youtube", "video")); got != 2 {
		t.Errorf("expected 2 youtube detections, got %f", got)
	}
	if got := testutil.ToFloat64(mm.detectionsTotal.WithLabelValues("github", "repository")); got != 1 {
		t.Errorf("expected 1 github detection, got %f", got)
	}
}

func TestCacheCounters(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{})

	mm.RecordCacheHit()
	mm.RecordCacheHit()
	mm.RecordCacheMiss()
	mm.UpdateCacheSize(42)

	if got := testutil.ToFloat64(mm.cacheHits); got != 2 {
		t.Errorf("expected 2 hits, got %f", got)
	}
	if got := testutil.ToFloat64(mm.cacheMisses); got != 1 {
		t.Errorf("expected 1 miss, got %f", got)
	}
	if got := testutil.ToFloat64(mm.cacheSize); got != 42 {
		t.Errorf("expected gauge 42, got %f", got)
	}
}

func TestExtractionStepFailureCounter(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{})

	mm.RecordExtractionStep("json-ld", 5*time.Millisecond, true)
	mm.RecordExtractionStep("platform-api", 5*time.Millisecond, false)

	if got := testutil.ToFloat64(mm.extractionStepFailures.WithLabelValues("platform-api")); got != 1 {
		t.Errorf("expected 1 failure, got %f", got)
	}
	if got := testutil.ToFloat64(mm.extractionStepFailures.WithLabelValues("json-ld")); got != 0 {
		t.Errorf("successful step should not count as failure, got %f", got)
	}
}

func TestIsolatedRegistries(t *testing.T) {
	// Two managers must not panic on duplicate registration
	a := NewMetricsManager(MetricsConfig{})
	b := NewMetricsManager(MetricsConfig{})

	a.RecordCacheHit()
	if got := testutil.ToFloat64(b.cacheHits); got != 0 {
		t.Errorf("registries should be isolated, got %f", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{})
	mm.RecordDetection("youtube", "video", time.Millisecond)
	mm.RecordStrategy("watch-later")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	mm.MetricsHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "clipsense_detections_total") {
		t.Error("detections counter missing from exposition")
	}
	if !strings.Contains(body, "clipsense_strategies_decided_total") {
		t.Error("strategy counter missing from exposition")
	}
}
