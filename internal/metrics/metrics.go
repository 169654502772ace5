// Package metrics exposes the server's Prometheus surface: command
// throughput, connection counts, blocked waiters, and replica links.
// Grounded on canonical-redis_exporter's exporter.go — the `Namespace`/
// `Name`/`Help` CounterOpts/GaugeOpts convention and registering a
// dedicated `prometheus.Registry` behind `promhttp.HandlerFor` rather than
// the global default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "redikv"

// Metrics holds every counter/gauge the server updates as it runs.
type Metrics struct {
	Registry *prometheus.Registry

	CommandsTotal       *prometheus.CounterVec
	ConnectionsActive   prometheus.Gauge
	ConnectionsTotal    prometheus.Counter
	BlockedListWaiters  prometheus.Gauge
	BlockedXReadWaiters prometheus.Gauge
	ReplicaLinks        prometheus.Gauge
	ReplicationOffset   prometheus.Gauge
}

// New builds a Metrics registered against a fresh registry, matching the
// exporter's "own registry, not the global default" pattern.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed, by command name and whether they returned an error.",
		}, []string{"command", "outcome"}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Currently open client connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total client connections accepted since start.",
		}),
		BlockedListWaiters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blocked_list_waiters",
			Help:      "Clients currently parked in BLPOP.",
		}),
		BlockedXReadWaiters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blocked_xread_waiters",
			Help:      "Clients currently parked in XREAD BLOCK.",
		}),
		ReplicaLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replica_links",
			Help:      "Currently attached replica links.",
		}),
		ReplicationOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replication_offset",
			Help:      "Current replication log offset (next frame to be appended).",
		}),
	}

	reg.MustRegister(
		m.CommandsTotal,
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.BlockedListWaiters,
		m.BlockedXReadWaiters,
		m.ReplicaLinks,
		m.ReplicationOffset,
	)
	return m
}

// Handler returns the HTTP handler the server mounts on its diagnostic
// port for Prometheus to scrape.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}
