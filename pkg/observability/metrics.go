package observability

import (
	"github.com/aretw0/nody/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the lifecycle hooks.
type Metrics struct {
	Activations   *prometheus.CounterVec
	Deactivations *prometheus.CounterVec
	Connections   *prometheus.CounterVec
	SubGraphs     *prometheus.CounterVec
	Loops         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Activations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nody_node_activations_total",
				Help: "Total number of node activations",
			},
			[]string{"graph", "node", "type"},
		),
		Deactivations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nody_node_deactivations_total",
				Help: "Total number of node deactivations",
			},
			[]string{"graph", "node"},
		),
		Connections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nody_connection_changes_total",
				Help: "Connections established or severed",
			},
			[]string{"graph", "change"},
		),
		SubGraphs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nody_sub_graph_entries_total",
				Help: "Total number of sub graph entries",
			},
			[]string{"graph", "sub_graph"},
		),
		Loops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nody_traversal_loops_total",
				Help: "Traversals aborted by the hop budget",
			},
			[]string{"graph"},
		),
	}

	for _, c := range []prometheus.Collector{m.Activations, m.Deactivations, m.Connections, m.SubGraphs, m.Loops} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeActivated: func(e *domain.NodeEvent) {
			m.Activations.WithLabelValues(e.GraphName, e.NodeName, string(e.NodeType)).Inc()
		},
		OnNodeDeactivated: func(e *domain.NodeEvent) {
			m.Deactivations.WithLabelValues(e.GraphName, e.NodeName).Inc()
		},
		OnConnected: func(e *domain.ConnectionEvent) {
			m.Connections.WithLabelValues(e.GraphName, "connected").Inc()
		},
		OnDisconnected: func(e *domain.ConnectionEvent) {
			m.Connections.WithLabelValues(e.GraphName, "disconnected").Inc()
		},
		OnSubGraphChanged: func(e *domain.SubGraphEvent) {
			if e.SubGraphID == "" {
				return
			}
			m.SubGraphs.WithLabelValues(e.GraphName, e.SubGraphName).Inc()
		},
		OnLoopDetected: func(e *domain.LoopEvent) {
			m.Loops.WithLabelValues(e.GraphName).Inc()
		},
	}
}
