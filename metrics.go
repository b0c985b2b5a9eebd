package harbor

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the node's Prometheus instruments.
type Metrics struct {
	ConnectionsAccepted prometheus.Counter
	RequestsTotal       *prometheus.CounterVec
	RequestErrors       prometheus.Counter
	DialsTotal          prometheus.Counter
	PeerstoreSize       prometheus.Gauge
}

// NewMetrics registers the node's instruments on the given registerer. Each
// node should get its own registry so several nodes can share a process, as
// they do in tests.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConnectionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Total number of inbound connections accepted",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of requests dispatched, by type",
		}, []string{"type"}),
		RequestErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Total number of requests that failed to decode or respond",
		}),
		DialsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dials_total",
			Help:      "Total number of outbound dials",
		}),
		PeerstoreSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peerstore_size",
			Help:      "Current number of known peers",
		}),
	}
}

// ServeHTTP prints the membership table, sorted by endpoint, for debugging.
// It reads a snapshot only, so it's safe to serve while workers run.
func (p *Peer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entries := p.store.Entries()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Identity.Socket() < entries[j].Identity.Socket()
	})
	fmt.Fprintf(w, "%s\n", p.identity)
	for _, e := range entries {
		fmt.Fprintf(w, "%s last seen %s\n", e.Identity.Socket(), e.LastSeen.Format("2006-01-02 15:04:05"))
	}
}
