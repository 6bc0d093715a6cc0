// Package metrics exposes Prometheus instrumentation for the review ledger
// and a small standalone metrics server.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors for ledger operations. Registered on the server's private
// registry so multiple instances in one process do not collide.
type Collectors struct {
	PapersSubmitted   prometheus.Counter
	ReviewsSubmitted  prometheus.Counter
	PapersDeactivated prometheus.Counter
	RejectedOps       *prometheus.CounterVec
}

func newCollectors(namespace string) *Collectors {
	return &Collectors{
		PapersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_submitted_total",
			Help:      "Number of papers committed to the ledger.",
		}),
		ReviewsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_submitted_total",
			Help:      "Number of reviews committed to the ledger.",
		}),
		PapersDeactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_deactivated_total",
			Help:      "Number of deactivations, including superuser force-deactivations.",
		}),
		RejectedOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_operations_total",
			Help:      "Operations rejected before commit, labeled by failure category.",
		}, []string{"reason"}),
	}
}

// MetricsServer serves the Prometheus endpoint for a component.
type MetricsServer struct {
	srv        *http.Server
	registry   *prometheus.Registry
	Collectors *Collectors
}

// New creates a metrics server for the given component namespace listening
// on addr. An empty addr still returns a usable instance whose collectors
// work but whose ListenAndServe is a no-op, so callers need no conditionals.
func New(namespace, addr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := newCollectors(namespace)
	registry.MustRegister(c.PapersSubmitted, c.ReviewsSubmitted, c.PapersDeactivated, c.RejectedOps)

	m := &MetricsServer{registry: registry, Collectors: c}
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		m.srv = &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
	}
	return m, nil
}

// ListenAndServe starts serving the /metrics endpoint. Blocks until shutdown.
func (m *MetricsServer) ListenAndServe() error {
	if m.srv == nil {
		return nil
	}
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if m.srv == nil {
		return nil
	}
	return m.srv.Shutdown(ctx)
}
