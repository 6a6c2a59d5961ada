package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeActivated   EventType = "node_activated"
	EventNodeDeactivated EventType = "node_deactivated"
	EventConnected       EventType = "connected"
	EventDisconnected    EventType = "disconnected"
	EventSubGraphChanged EventType = "sub_graph_changed"
	EventLoopDetected    EventType = "loop_detected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	GraphID   string    `json:"graph_id"`
	GraphName string    `json:"graph_name,omitempty"`
}

// NodeEvent represents the activation or deactivation of a node.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeName string   `json:"node_name"`
	NodeType NodeType `json:"node_type"`
	// Global is set when the node was toggled as a global node rather than
	// through the active-node pointer.
	Global bool `json:"global,omitempty"`
	// ConnectionID is the connection used to arrive at the node, if any.
	ConnectionID string `json:"connection_id,omitempty"`
}

// ConnectionEvent represents a connection being established or severed.
type ConnectionEvent struct {
	EventBase
	ConnectionID   string `json:"connection_id"`
	OutputNodeID   string `json:"output_node_id"`
	OutputSocketID string `json:"output_socket_id"`
	InputNodeID    string `json:"input_node_id"`
	InputSocketID  string `json:"input_socket_id"`
}

// SubGraphEvent represents a change of a graph's active sub graph.
// SubGraphID is empty when the sub graph was cleared.
type SubGraphEvent struct {
	EventBase
	NodeID       string `json:"node_id"`
	SubGraphID   string `json:"sub_graph_id,omitempty"`
	SubGraphName string `json:"sub_graph_name,omitempty"`
}

// LoopEvent reports an aborted traversal.
type LoopEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Hops   int    `json:"hops"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every field is optional.
type LifecycleHooks struct {
	OnNodeActivated   func(*NodeEvent)
	OnNodeDeactivated func(*NodeEvent)
	OnConnected       func(*ConnectionEvent)
	OnDisconnected    func(*ConnectionEvent)
	OnSubGraphChanged func(*SubGraphEvent)
	OnLoopDetected    func(*LoopEvent)
}
