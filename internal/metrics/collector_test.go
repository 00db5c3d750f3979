package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter_IncAndAdd(t *testing.T) {
	c := NewMetricsCollector()
	ctr := c.Counter("test_total", "test counter", "")

	ctr.Inc()
	ctr.Add(4)
	if got := ctr.Value(); got != 5 {
		t.Errorf("counter value: got %d, want 5", got)
	}
}

func TestCounter_SameNameSharesInstance(t *testing.T) {
	c := NewMetricsCollector()
	a := c.Counter("shared_total", "help", "")
	b := c.Counter("shared_total", "help", "")

	a.Inc()
	if b.Value() != 1 {
		t.Error("counters with the same name must share state")
	}
}

func TestGauge_SetIncDec(t *testing.T) {
	c := NewMetricsCollector()
	g := c.Gauge("test_gauge", "test gauge", "")

	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	if got := g.Value(); got != 9 {
		t.Errorf("gauge value: got %d, want 9", got)
	}
}

func TestHandler_PrometheusTextFormat(t *testing.T) {
	c := NewMetricsCollector()
	c.Counter("llmgate_test_requests_total", "Test requests", "").Add(3)
	c.Gauge("llmgate_test_active", "Test active", "").Set(2)

	rec := httptest.NewRecorder()
	c.Handler()(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type: got %q", ct)
	}
	for _, want := range []string{
		"llmgate_uptime_seconds",
		"# TYPE llmgate_test_requests_total counter",
		"llmgate_test_requests_total 3",
		"# TYPE llmgate_test_active gauge",
		"llmgate_test_active 2",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q in:\n%s", want, body)
		}
	}
}
