package graph

import (
	"fmt"
	"strconv"

	"github.com/aretw0/nody/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

type subGraphData struct {
	Graph string `mapstructure:"graph"`
}

type switchBackData struct {
	Sources []string `mapstructure:"sources"`
}

// FromDocument builds a graph from its document. SubGraph nodes only record
// their reference (SubGraphState.Ref); linking child graphs is up to the caller.
func FromDocument(doc *domain.GraphDocument, opts ...Option) (*Graph, error) {
	if doc == nil {
		return nil, fmt.Errorf("build graph: nil document")
	}
	base := []Option{WithID(doc.ID), WithVersion(doc.Version)}
	if doc.SubGraph {
		base = append(base, AsSubGraph())
	}
	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	g := New(name, append(base, opts...)...)

	for _, nd := range doc.Nodes {
		n, err := g.AddNodeWithID(nd.ID, nd.Type, nd.Name)
		if err != nil {
			return nil, fmt.Errorf("graph %q: %w", doc.ID, err)
		}
		n.Global = nd.Global
		if nd.Width > 0 {
			n.Width = nd.Width
		}
		if err := g.applyData(n, nd); err != nil {
			return nil, fmt.Errorf("graph %q node %q: %w", doc.ID, nd.ID, err)
		}
		if err := g.applySockets(n, nd); err != nil {
			return nil, fmt.Errorf("graph %q node %q: %w", doc.ID, nd.ID, err)
		}
	}

	for i, cd := range doc.Connections {
		out, err := g.resolveSocket(cd.OutputNode, cd.OutputSocket, domain.Output)
		if err != nil {
			return nil, fmt.Errorf("graph %q connection %d: %w", doc.ID, i, err)
		}
		in, err := g.resolveSocket(cd.InputNode, cd.InputSocket, domain.Input)
		if err != nil {
			return nil, fmt.Errorf("graph %q connection %d: %w", doc.ID, i, err)
		}
		if _, err := g.connect(cd.ID, out, in); err != nil {
			return nil, fmt.Errorf("graph %q connection %d: %w", doc.ID, i, err)
		}
	}
	return g, nil
}

func (g *Graph) applyData(n *Node, nd domain.NodeDocument) error {
	switch n.Type {
	case domain.NodeTypeSubGraph:
		var data subGraphData
		if err := mapstructure.Decode(nd.Data, &data); err != nil {
			return fmt.Errorf("failed to decode sub graph data: %w", err)
		}
		n.SubGraph.Ref = data.Graph

	case domain.NodeTypeSwitchBack:
		var data switchBackData
		if err := mapstructure.Decode(nd.Data, &data); err != nil {
			return fmt.Errorf("failed to decode switch back data: %w", err)
		}
		for i, name := range data.Sources {
			if i == 0 {
				first := &n.SwitchBack.Sources[0]
				first.Name = name
				n.Socket(first.InputSocketID).Name = name
				n.Socket(first.OutputSocketID).Name = name
				continue
			}
			g.addSwitchBackSource(n, name)
		}

	case domain.NodeTypeGeneral:
		for i := len(n.Outputs); i < len(nd.Outputs); i++ {
			sd := nd.Outputs[i]
			policy := sd.Policy
			if policy == "" {
				policy = domain.Override
			}
			g.newSocket(n, sd.Name, domain.Output, policy)
		}
	}
	return nil
}

// applySockets renames the default sockets after the positional socket documents.
func (g *Graph) applySockets(n *Node, nd domain.NodeDocument) error {
	apply := func(list []*Socket, docs []domain.SocketDocument, dir domain.Direction) error {
		if len(docs) > len(list) {
			return fmt.Errorf("%d %s sockets declared, %s node has %d: %w",
				len(docs), dir, n.Type, len(list), domain.ErrSocketNotFound)
		}
		for i, sd := range docs {
			s := list[i]
			if sd.Name != "" {
				s.Name = sd.Name
			}
			if sd.ID != "" && sd.ID != s.ID {
				if _, taken := g.sockets[sd.ID]; taken {
					return fmt.Errorf("duplicate socket id %q", sd.ID)
				}
				g.rekeySocket(n, s, sd.ID)
			}
		}
		return nil
	}
	if err := apply(n.Inputs, nd.Inputs, domain.Input); err != nil {
		return err
	}
	return apply(n.Outputs, nd.Outputs, domain.Output)
}

func (g *Graph) rekeySocket(n *Node, s *Socket, id string) {
	old := s.ID
	delete(g.sockets, old)
	s.ID = id
	g.sockets[id] = s
	if n.SwitchBack == nil {
		return
	}
	for i := range n.SwitchBack.Sources {
		src := &n.SwitchBack.Sources[i]
		if src.InputSocketID == old {
			src.InputSocketID = id
		}
		if src.OutputSocketID == old {
			src.OutputSocketID = id
		}
	}
}

// resolveSocket finds a socket by id, falling back to a positional index.
func (g *Graph) resolveSocket(nodeID, ref string, dir domain.Direction) (*Socket, error) {
	n := g.NodeByID(nodeID)
	if n == nil {
		return nil, fmt.Errorf("node %q: %w", nodeID, domain.ErrNodeNotFound)
	}
	list := n.Outputs
	if dir == domain.Input {
		list = n.Inputs
	}
	for _, s := range list {
		if s.ID == ref {
			return s, nil
		}
	}
	idx := 0
	if ref != "" {
		var err error
		if idx, err = strconv.Atoi(ref); err != nil {
			return nil, fmt.Errorf("node %q %s socket %q: %w", nodeID, dir, ref, domain.ErrSocketNotFound)
		}
	}
	if idx < 0 || idx >= len(list) {
		return nil, fmt.Errorf("node %q %s socket %q: %w", nodeID, dir, ref, domain.ErrSocketNotFound)
	}
	return list[idx], nil
}

// ToDocument describes the graph structure. Runtime state is not included.
func (g *Graph) ToDocument() *domain.GraphDocument {
	doc := &domain.GraphDocument{
		ID:       g.ID,
		Name:     g.Name,
		Version:  g.Version,
		SubGraph: g.IsSubGraph,
	}
	sockets := func(list []*Socket) []domain.SocketDocument {
		out := make([]domain.SocketDocument, 0, len(list))
		for _, s := range list {
			out = append(out, domain.SocketDocument{ID: s.ID, Name: s.Name, Policy: s.Policy})
		}
		return out
	}
	for _, n := range g.nodes {
		nd := domain.NodeDocument{
			ID:      n.ID,
			Name:    n.Name,
			Type:    n.Type,
			Global:  n.Global,
			Width:   n.Width,
			Inputs:  sockets(n.Inputs),
			Outputs: sockets(n.Outputs),
		}
		switch {
		case n.SubGraph != nil && n.SubGraph.Ref != "":
			nd.Data = map[string]any{domain.KeyGraph: n.SubGraph.Ref}
		case n.SwitchBack != nil:
			names := make([]string, 0, len(n.SwitchBack.Sources))
			for _, src := range n.SwitchBack.Sources {
				names = append(names, src.Name)
			}
			nd.Data = map[string]any{domain.KeySources: names}
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, c := range g.Connections() {
		doc.Connections = append(doc.Connections, domain.ConnectionDocument{
			ID:           c.ID,
			OutputNode:   c.OutputNodeID,
			OutputSocket: c.OutputSocketID,
			InputNode:    c.InputNodeID,
			InputSocket:  c.InputSocketID,
		})
	}
	return doc
}
