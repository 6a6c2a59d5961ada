package observability

import (
	"log/slog"

	"github.com/aretw0/nody/pkg/domain"
)

// LoggingHooks logs every lifecycle event to logger. Activations and wiring
// changes are logged at Debug, loop aborts at Error.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeActivated: func(e *domain.NodeEvent) {
			logger.Debug("node_activated",
				"graph", e.GraphName,
				"node_id", e.NodeID,
				"node", e.NodeName,
				"type", e.NodeType,
				"global", e.Global,
			)
		},
		OnNodeDeactivated: func(e *domain.NodeEvent) {
			logger.Debug("node_deactivated",
				"graph", e.GraphName,
				"node_id", e.NodeID,
				"node", e.NodeName,
				"global", e.Global,
			)
		},
		OnConnected: func(e *domain.ConnectionEvent) {
			logger.Debug("connected",
				"graph", e.GraphName,
				"from", e.OutputNodeID,
				"to", e.InputNodeID,
			)
		},
		OnDisconnected: func(e *domain.ConnectionEvent) {
			logger.Debug("disconnected",
				"graph", e.GraphName,
				"from", e.OutputNodeID,
				"to", e.InputNodeID,
			)
		},
		OnSubGraphChanged: func(e *domain.SubGraphEvent) {
			logger.Info("sub_graph_changed",
				"graph", e.GraphName,
				"node_id", e.NodeID,
				"sub_graph", e.SubGraphName,
			)
		},
		OnLoopDetected: func(e *domain.LoopEvent) {
			logger.Error("loop_detected",
				"graph", e.GraphName,
				"node_id", e.NodeID,
				"hops", e.Hops,
			)
		},
	}
}
