// Package metrics expone los contadores Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implementa los observers de economy, audit y del middleware HTTP.
type Collector struct {
	operations   *prometheus.CounterVec
	conflicts    *prometheus.CounterVec
	auditEntries *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "economy_operations_total",
			Help: "Operaciones de economía por acción y resultado (ok, rejected, error).",
		}, []string{"action", "outcome"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "economy_commit_conflicts_total",
			Help: "Commits rechazados por revisión vieja (cada uno dispara un reintento).",
		}, []string{"action"}),
		auditEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Entradas de auditoría por resultado (written, failed, dropped).",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests HTTP por método, ruta y status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de requests HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.operations,
		c.conflicts,
		c.auditEntries,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *Collector) ObserveOperation(action, outcome string) {
	c.operations.WithLabelValues(action, outcome).Inc()
}

func (c *Collector) ObserveConflict(action string) {
	c.conflicts.WithLabelValues(action).Inc()
}

func (c *Collector) ObserveAudit(outcome string) {
	c.auditEntries.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler es el endpoint de scrape.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
