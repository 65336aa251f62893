package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	// sender
	OrdersSent      prometheus.Counter
	PublishFailures prometheus.Counter
	PublishLatency  prometheus.Histogram

	// receiver
	EventsReceived prometheus.Counter
	EventsFiltered prometheus.Counter
	DecodeFailures prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	sent := prometheus.NewCounter(prometheus.CounterOpts{Name: "ordersim_orders_sent_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "ordersim_publish_failures_total"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ordersim_publish_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})
	received := prometheus.NewCounter(prometheus.CounterOpts{Name: "ordersim_events_received_total"})
	filtered := prometheus.NewCounter(prometheus.CounterOpts{Name: "ordersim_events_filtered_total"})
	decodeFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "ordersim_decode_failures_total"})

	r.MustRegister(sent, failures, latency, received, filtered, decodeFailures)
	return &Registry{
		reg:             r,
		OrdersSent:      sent,
		PublishFailures: failures,
		PublishLatency:  latency,
		EventsReceived:  received,
		EventsFiltered:  filtered,
		DecodeFailures:  decodeFailures,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Serve exposes /metrics and /healthz on addr until ctx is done.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
