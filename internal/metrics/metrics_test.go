package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler_ExposesCounters(t *testing.T) {
	r := NewRegistry()
	r.OrdersSent.Add(3)
	r.EventsFiltered.Inc()
	r.PublishLatency.Observe(0.01)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Result().Body)
	s := string(body)

	for _, want := range []string{
		"ordersim_orders_sent_total 3",
		"ordersim_events_filtered_total 1",
		"ordersim_publish_latency_seconds_count 1",
		"ordersim_decode_failures_total 0",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, s)
		}
	}
}
