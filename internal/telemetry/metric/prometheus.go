package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rehashkv"

// Registry holds all server metrics.
type Registry struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsActive   prometheus.Gauge
	ConnectionsAccepted prometheus.Counter
	ConnectionsClosed   *prometheus.CounterVec
	ConnectionsRejected prometheus.Counter

	// Command metrics
	CommandsTotal  *prometheus.CounterVec
	ProtocolErrors prometheus.Counter

	// Traffic
	NetworkBytes *prometheus.CounterVec
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// NewRegistry creates a registry with the Go and process collectors and
// all server metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open client connections",
		}),
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Total client connections accepted",
		}),
		ConnectionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Total client connections closed, by reason",
		}, []string{"reason"}),
		ConnectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Total connections refused by the accept limiter",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total commands executed, by command and status",
		}, []string{"command", "status"}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Total connections closed for a malformed request",
		}),
		NetworkBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_bytes_total",
			Help:      "Total bytes read from and written to clients",
		}, []string{"direction"}),
	}

	reg.MustRegister(
		r.ConnectionsActive,
		r.ConnectionsAccepted,
		r.ConnectionsClosed,
		r.ConnectionsRejected,
		r.CommandsTotal,
		r.ProtocolErrors,
		r.NetworkBytes,
	)
	return r
}

// Register adds an extra collector, such as a DictCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ConnOpened records an accepted connection.
func (r *Registry) ConnOpened() {
	r.ConnectionsAccepted.Inc()
	r.ConnectionsActive.Inc()
}

// ConnClosed records a closed connection. reason is a short label such as
// "eof", "protocol" or "io".
func (r *Registry) ConnClosed(reason string) {
	r.ConnectionsActive.Dec()
	r.ConnectionsClosed.WithLabelValues(reason).Inc()
}

// ConnRejected records a connection dropped by the accept limiter.
func (r *Registry) ConnRejected() {
	r.ConnectionsRejected.Inc()
}

// RecordCommand records one executed command.
func (r *Registry) RecordCommand(command, status string) {
	r.CommandsTotal.WithLabelValues(command, status).Inc()
}

// IncProtocolError records a malformed request.
func (r *Registry) IncProtocolError() {
	r.ProtocolErrors.Inc()
}

// AddBytesRead records bytes received from clients.
func (r *Registry) AddBytesRead(n int) {
	if n > 0 {
		r.NetworkBytes.WithLabelValues("in").Add(float64(n))
	}
}

// AddBytesWritten records bytes sent to clients.
func (r *Registry) AddBytesWritten(n int) {
	if n > 0 {
		r.NetworkBytes.WithLabelValues("out").Add(float64(n))
	}
}
