package controller

import (
	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
)

// NodeRef identifies a node in a Status snapshot.
type NodeRef struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    domain.NodeType `json:"type"`
	GraphID string          `json:"graph_id"`
}

// Status is a point-in-time snapshot of a controller.
type Status struct {
	Name      string `json:"name,omitempty"`
	GraphID   string `json:"graph_id,omitempty"`
	GraphName string `json:"graph_name,omitempty"`
	Enabled   bool   `json:"enabled"`
	Started   bool   `json:"started"`
	Ticks     uint64 `json:"ticks"`
	Error     string `json:"error,omitempty"`

	// Path is the chain of active nodes from the root graph down through
	// running sub graphs.
	Path    []NodeRef `json:"path"`
	Globals []NodeRef `json:"globals,omitempty"`
}

// Active returns the innermost active node, if any.
func (s Status) Active() (NodeRef, bool) {
	if len(s.Path) == 0 {
		return NodeRef{}, false
	}
	return s.Path[len(s.Path)-1], true
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		Name:    c.name,
		Enabled: c.enabled,
		Started: c.enabled && !c.pendingStart,
		Ticks:   c.ticks,
		Path:    []NodeRef{},
	}
	if c.err != nil {
		st.Error = c.err.Error()
	}
	if c.graph == nil {
		return st
	}
	st.GraphID = c.graph.ID
	st.GraphName = c.graph.Name
	for _, n := range c.graph.Path() {
		st.Path = append(st.Path, ref(n))
	}
	for _, n := range c.graph.ActiveGlobalNodes() {
		st.Globals = append(st.Globals, ref(n))
	}
	return st
}

func ref(n *graph.Node) NodeRef {
	return NodeRef{ID: n.ID, Name: n.Name, Type: n.Type, GraphID: n.GraphID()}
}
