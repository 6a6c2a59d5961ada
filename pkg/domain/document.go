package domain

// GraphDocument is the loadable description of a graph.
// It is what loaders return and what the compiler turns into a live graph.
type GraphDocument struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
	SubGraph bool   `json:"sub_graph,omitempty" yaml:"sub_graph,omitempty"`

	Nodes       []NodeDocument       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionDocument `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// NodeDocument describes a single node.
//
// Sockets are positional. When a list is shorter than the defaults of the node type,
// the missing sockets are created with generated ids. For SwitchBack nodes index 0 is
// the target pair and indexes 1..N are the sources, in the order of Data["sources"].
type NodeDocument struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	Type   NodeType `json:"type" yaml:"type"`
	Global bool     `json:"global,omitempty" yaml:"global,omitempty"`
	Width  float64  `json:"width,omitempty" yaml:"width,omitempty"`

	Inputs  []SocketDocument `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs []SocketDocument `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	// Data holds the variant payload (see KeyGraph, KeySources).
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// SocketDocument describes a socket of a node.
type SocketDocument struct {
	ID     string           `json:"id" yaml:"id"`
	Name   string           `json:"name,omitempty" yaml:"name,omitempty"`
	Policy ConnectionPolicy `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// ConnectionDocument describes an edge by node-id/socket-id pairs.
// A socket reference that matches no socket id of the node is read as a
// zero-based index ("0", "1", ...); an empty reference means index 0.
type ConnectionDocument struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	OutputNode   string `json:"output_node" yaml:"output_node"`
	OutputSocket string `json:"output_socket" yaml:"output_socket"`
	InputNode    string `json:"input_node" yaml:"input_node"`
	InputSocket  string `json:"input_socket" yaml:"input_socket"`
}

// SubGraphRefs returns the ids of the graphs referenced by SubGraph nodes.
func (d *GraphDocument) SubGraphRefs() []string {
	var refs []string
	for _, n := range d.Nodes {
		if n.Type != NodeTypeSubGraph {
			continue
		}
		if ref, ok := n.Data[KeyGraph].(string); ok && ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}
