package dsl

import (
	"fmt"

	"github.com/aretw0/nody/pkg/domain"
)

type edge struct {
	output string // named General output, "" for the default one
	ret    string // SwitchBack source whose return output is used
	target string
	source string // SwitchBack source input on the target
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.NodeDocument
	outputs []string
	sources []string
	edges   []edge
	builder *Builder
}

// Name sets the display name of the node.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.node.Name = name
	return n
}

// Global marks the node as global: it is toggled with the graph's entry point.
func (n *NodeBuilder) Global() *NodeBuilder {
	n.node.Global = true
	return n
}

// Output declares an extra named output socket (General nodes only).
func (n *NodeBuilder) Output(name string) *NodeBuilder {
	for _, o := range n.outputs {
		if o == name {
			return n
		}
	}
	n.outputs = append(n.outputs, name)
	return n
}

// Go connects the default output to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.edges = append(n.edges, edge{target: target})
	return n
}

// Branch connects a named output to the target, declaring the output if needed.
func (n *NodeBuilder) Branch(output, target string) *NodeBuilder {
	n.Output(output)
	n.edges = append(n.edges, edge{output: output, target: target})
	return n
}

// Into connects the default output to a source input of a SwitchBack target.
func (n *NodeBuilder) Into(target, source string) *NodeBuilder {
	n.edges = append(n.edges, edge{target: target, source: source})
	return n
}

// BranchInto connects a named output to a source input of a SwitchBack target.
func (n *NodeBuilder) BranchInto(output, target, source string) *NodeBuilder {
	n.Output(output)
	n.edges = append(n.edges, edge{output: output, target: target, source: source})
	return n
}

// Return connects the return output of a SwitchBack source to the target.
func (n *NodeBuilder) Return(source, target string) *NodeBuilder {
	n.edges = append(n.edges, edge{ret: source, target: target})
	return n
}

// Build returns the underlying node document.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.NodeDocument {
	return n.document()
}

func (n *NodeBuilder) document() domain.NodeDocument {
	nd := n.node
	if n.node.Type == domain.NodeTypeGeneral && len(n.outputs) > 1 {
		nd.Outputs = make([]domain.SocketDocument, len(n.outputs))
		for i, name := range n.outputs[1:] {
			nd.Outputs[i+1] = domain.SocketDocument{Name: name, Policy: domain.Override}
		}
	}
	return nd
}

func (n *NodeBuilder) outputIndex(output, ret string) (int, error) {
	if ret != "" {
		if n.node.Type != domain.NodeTypeSwitchBack {
			return 0, fmt.Errorf("return %q: %s node has no sources: %w", ret, n.node.Type, domain.ErrSocketNotFound)
		}
		return n.sourceIndex(ret)
	}
	if output == "" {
		return 0, nil
	}
	if n.node.Type != domain.NodeTypeGeneral {
		return 0, fmt.Errorf("output %q: %s node has no named outputs: %w", output, n.node.Type, domain.ErrSocketNotFound)
	}
	for i, o := range n.outputs {
		if o == output {
			return i, nil
		}
	}
	return 0, fmt.Errorf("output %q: %w", output, domain.ErrSocketNotFound)
}

// sourceIndex maps a SwitchBack source name to its socket position.
// Position 0 is the target pair.
func (n *NodeBuilder) sourceIndex(source string) (int, error) {
	if n.node.Type != domain.NodeTypeSwitchBack {
		return 0, fmt.Errorf("source %q: %s node is not a switch back: %w", source, n.node.Type, domain.ErrSocketNotFound)
	}
	for i, s := range n.sources {
		if s == source {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("source %q: %w", source, domain.ErrSocketNotFound)
}
