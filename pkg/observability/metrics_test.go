package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	if metrics == nil {
		t.Fatal("NewMetrics returned nil")
	}
	if metrics.UpstreamRequestsTotal == nil {
		t.Error("UpstreamRequestsTotal is nil")
	}
	if metrics.DeliveriesByBucket == nil {
		t.Error("DeliveriesByBucket is nil")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected duplicate registration to panic")
		}
	}()
	NewMetrics(registry)
}

func TestObserveUpstream(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.ObserveUpstream("GET", "/api/v1/subscription-plans", 200, 40*time.Millisecond)
	metrics.ObserveUpstream("GET", "/api/v1/subscription-plans", 200, 10*time.Millisecond)
	metrics.ObserveUpstreamError("/api/v1/subscription-plans", "network")

	if got := testutil.ToFloat64(metrics.UpstreamRequestsTotal.WithLabelValues("GET", "/api/v1/subscription-plans", "200")); got != 2 {
		t.Errorf("Expected 2 upstream requests, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.UpstreamErrorsTotal.WithLabelValues("/api/v1/subscription-plans", "network")); got != 1 {
		t.Errorf("Expected 1 upstream error, got %v", got)
	}
}

func TestObserveUpstream_NilMetrics(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveUpstream("GET", "/x", 200, time.Millisecond)
	metrics.ObserveUpstreamError("/x", "api")
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	router := mux.NewRouter()
	router.Use(HTTPMetricsMiddleware(metrics))
	router.HandleFunc("/api/v1/plans/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "short and stout")
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+id, nil))
	}

	got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/plans/{id}", "418"))
	if got != 3 {
		t.Errorf("Expected 3 requests under the route template, got %v", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.QuotesTotal.WithLabelValues("preset", "Weekly").Inc()

	rec := httptest.NewRecorder()
	MetricsHandler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "gaslink_quotes_total") {
		t.Error("Expected gaslink_quotes_total in exposition output")
	}
}
