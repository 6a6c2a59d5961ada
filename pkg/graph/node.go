package graph

import (
	"github.com/aretw0/nody/pkg/domain"
)

// Node is a typed vertex owned by exactly one Graph.
// Nodes are created with Graph.AddNode and removed with Graph.RemoveNode.
type Node struct {
	ID        string
	Name      string
	Type      domain.NodeType
	Deletable bool
	// Global nodes are toggled together with the graph's entry point,
	// independently of the active-node pointer.
	Global bool
	Width  float64

	Inputs  []*Socket
	Outputs []*Socket

	// Errors holds the flags computed by the last CheckForErrors call.
	// SubGraph nodes also refresh their reference flags when entered.
	Errors NodeErrors

	// Variant state. Only the field matching Type is set.
	SubGraph   *SubGraphState
	SwitchBack *SwitchBackState

	graphID string
}

// GraphID returns the id of the owning graph.
func (n *Node) GraphID() string {
	return n.graphID
}

// Input returns the input socket at index i, or nil.
func (n *Node) Input(i int) *Socket {
	if i < 0 || i >= len(n.Inputs) {
		return nil
	}
	return n.Inputs[i]
}

// Output returns the output socket at index i, or nil.
func (n *Node) Output(i int) *Socket {
	if i < 0 || i >= len(n.Outputs) {
		return nil
	}
	return n.Outputs[i]
}

// Socket looks a socket of this node up by id.
func (n *Node) Socket(id string) *Socket {
	for _, s := range n.Inputs {
		if s.ID == id {
			return s
		}
	}
	for _, s := range n.Outputs {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (n *Node) sockets() []*Socket {
	all := make([]*Socket, 0, len(n.Inputs)+len(n.Outputs))
	all = append(all, n.Inputs...)
	return append(all, n.Outputs...)
}

// SubGraphState is the variant state of a SubGraph node.
type SubGraphState struct {
	// Ref is the document id of the child graph, kept for tooling.
	Ref string
	// Graph is the child graph instance. Nil means nothing is referenced.
	Graph *Graph
}

// SwitchBackSource is a named input/output socket pair of a SwitchBack node.
type SwitchBackSource struct {
	Name           string
	InputSocketID  string
	OutputSocketID string
}

// SwitchBackState is the variant state of a SwitchBack node.
// Input(0)/Output(0) are the target pair; each source owns one further pair.
type SwitchBackState struct {
	Sources []SwitchBackSource

	// returnSocketID is the output socket of the source that last led to the
	// target. Runtime only.
	returnSocketID string
}

// ReturnSocketID returns the remembered return address, or "".
func (s *SwitchBackState) ReturnSocketID() string {
	return s.returnSocketID
}

func (s *SwitchBackState) sourceByInput(socketID string) (SwitchBackSource, bool) {
	for _, src := range s.Sources {
		if src.InputSocketID == socketID {
			return src, true
		}
	}
	return SwitchBackSource{}, false
}

// NodeErrors are the validation flags of a node. They never stop traversal;
// they explain to tooling why a graph may get stuck.
type NodeErrors struct {
	OutputNotConnected           bool `json:"output_not_connected,omitempty"`
	InputNotConnected            bool `json:"input_not_connected,omitempty"`
	NoGraphReferenced            bool `json:"no_graph_referenced,omitempty"`
	ReferencedGraphIsNotSubGraph bool `json:"referenced_graph_is_not_sub_graph,omitempty"`
	NoEnterNode                  bool `json:"no_enter_node,omitempty"`
	TargetNotConnected           bool `json:"target_not_connected,omitempty"`
	NoSourceConnected            bool `json:"no_source_connected,omitempty"`
}

// Any reports whether at least one flag is set.
func (e NodeErrors) Any() bool {
	return len(e.Messages()) > 0
}

// Messages returns a human readable line per raised flag.
func (e NodeErrors) Messages() []string {
	var msgs []string
	if e.OutputNotConnected {
		msgs = append(msgs, "output not connected")
	}
	if e.InputNotConnected {
		msgs = append(msgs, "input not connected")
	}
	if e.NoGraphReferenced {
		msgs = append(msgs, "no graph referenced")
	}
	if e.ReferencedGraphIsNotSubGraph {
		msgs = append(msgs, "referenced graph is not a sub graph")
	}
	if e.NoEnterNode {
		msgs = append(msgs, "referenced graph has no enter node")
	}
	if e.TargetNotConnected {
		msgs = append(msgs, "target not connected")
	}
	if e.NoSourceConnected {
		msgs = append(msgs, "no source connected")
	}
	return msgs
}
