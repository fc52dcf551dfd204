package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements Instrumentation on a dedicated registry.
type Prometheus struct {
	registry *prometheus.Registry

	OperationDuration *prometheus.HistogramVec // webapp_operation_duration_seconds{scope,operation}
	Events            *prometheus.CounterVec   // webapp_events_total{event}
}

func NewPrometheus(registry *prometheus.Registry) *Prometheus {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(registry)

	return &Prometheus{
		registry: registry,

		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webapp_operation_duration_seconds",
			Help:    "Duration of API, object store and metadata store operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"scope", "operation"}),

		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webapp_events_total",
			Help: "Count of named events such as API calls and errors",
		}, []string{"event"}),
	}
}

func (p *Prometheus) Observe(name string, elapsed time.Duration) {
	scope, operation := split(name)
	p.OperationDuration.WithLabelValues(scope, operation).Observe(elapsed.Seconds())
}

func (p *Prometheus) Count(name string) {
	p.Events.WithLabelValues(name).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
