package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHTTPMetricsExposedThroughHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodGet, "/api/v1/compare", http.StatusOK, 20*time.Millisecond)
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	if !strings.Contains(body, `mukayese_http_requests_total{method="GET",route="/api/v1/compare",status="2xx"} 1`) {
		t.Fatalf("missing compare counter:\n%s", body)
	}
	if !strings.Contains(body, `route="unmatched",status="4xx"`) {
		t.Fatalf("missing unmatched counter:\n%s", body)
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 429: "4xx", 503: "5xx", 42: "unknown"}
	for status, want := range cases {
		if got := StatusClass(status); got != want {
			t.Fatalf("status %d: expected %s, got %s", status, want, got)
		}
	}
}
