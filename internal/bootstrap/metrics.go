package bootstrap

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/target/portal-auth/config"
	"github.com/target/portal-auth/internal/observability/metrics"
)

// Observability groups the metrics recorder and its scrape handler.
type Observability struct {
	Recorder metrics.Recorder
	// Handler serves /metrics; nil when metrics are disabled.
	Handler http.Handler
}

// BuildObservability creates a private Prometheus registry with runtime
// collectors and the auth counters.
func BuildObservability(cfg config.MetricsConfig) Observability {
	if !cfg.Enabled {
		return Observability{Recorder: metrics.Noop{}}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(
		metrics.WithNamespace(cfg.Namespace),
		metrics.WithRegistry(registry),
	)
	return Observability{
		Recorder: recorder,
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}
}
