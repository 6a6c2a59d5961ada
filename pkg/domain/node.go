package domain

// NodeType is the behaviour tag of a node. It selects the variant behaviour
// (enter/exit semantics and default sockets) applied by the graph package.
type NodeType string

const (
	// NodeTypeStart is the entry point of a root graph. Pass-through.
	NodeTypeStart NodeType = "start"
	// NodeTypeEnter is the entry point of a sub graph. Pass-through.
	NodeTypeEnter NodeType = "enter"
	// NodeTypeExit returns control to the parent graph. Pass-through.
	NodeTypeExit NodeType = "exit"
	// NodeTypeSubGraph transfers control into a child graph.
	NodeTypeSubGraph NodeType = "sub_graph"
	// NodeTypeSwitchBack remembers which source led to a shared target.
	NodeTypeSwitchBack NodeType = "switch_back"
	// NodeTypeGeneral holds the active pointer until something external advances it.
	NodeTypeGeneral NodeType = "general"
)

// NodeTypes lists every known node type in declaration order.
var NodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypeEnter,
	NodeTypeExit,
	NodeTypeSubGraph,
	NodeTypeSwitchBack,
	NodeTypeGeneral,
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Singleton reports whether a graph may hold at most one node of this type.
func (t NodeType) Singleton() bool {
	return t == NodeTypeStart || t == NodeTypeEnter
}

// Structural reports whether the type is part of the graph skeleton and therefore
// cannot be removed through the normal deletion path.
func (t NodeType) Structural() bool {
	return t == NodeTypeStart || t == NodeTypeEnter || t == NodeTypeExit
}

// Field constants for the variant payload stored in NodeDocument.Data.
const (
	// KeyGraph names the child graph referenced by a SubGraph node.
	KeyGraph = "graph"
	// KeySources lists the source names of a SwitchBack node.
	KeySources = "sources"
)
