package dsl

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/nody/pkg/adapters/memory"
	"github.com/aretw0/nody/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	doc   domain.GraphDocument
	nodes []*NodeBuilder
	index map[string]*NodeBuilder
}

// New creates a new graph builder for the document id.
func New(id string) *Builder {
	return &Builder{
		doc:   domain.GraphDocument{ID: id},
		index: make(map[string]*NodeBuilder),
	}
}

// Name sets the display name of the graph.
func (b *Builder) Name(name string) *Builder {
	b.doc.Name = name
	return b
}

// Version sets the graph version.
func (b *Builder) Version(v string) *Builder {
	b.doc.Version = v
	return b
}

// AsSubGraph marks the graph as a sub graph (Enter/Exit instead of Start).
func (b *Builder) AsSubGraph() *Builder {
	b.doc.SubGraph = true
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string, t domain.NodeType) *NodeBuilder {
	if nb, ok := b.index[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.NodeDocument{ID: id, Type: t},
		outputs: []string{"Out"},
		builder: b,
	}
	b.index[id] = nb
	b.nodes = append(b.nodes, nb)
	return nb
}

// Start adds the Start node of a root graph.
func (b *Builder) Start(id string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeStart)
}

// Enter adds the Enter node of a sub graph.
func (b *Builder) Enter(id string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeEnter)
}

// Exit adds an Exit node of a sub graph.
func (b *Builder) Exit(id string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeExit)
}

// General adds a node that holds the active pointer until advanced.
func (b *Builder) General(id string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeGeneral)
}

// SubGraph adds a node that runs the graph document ref.
func (b *Builder) SubGraph(id, ref string) *NodeBuilder {
	nb := b.Add(id, domain.NodeTypeSubGraph)
	nb.node.Data = map[string]any{domain.KeyGraph: ref}
	return nb
}

// SwitchBack adds a SwitchBack node with the given source names.
// Without names a single default source is created.
func (b *Builder) SwitchBack(id string, sources ...string) *NodeBuilder {
	nb := b.Add(id, domain.NodeTypeSwitchBack)
	if len(sources) > 0 {
		nb.sources = sources
		nb.node.Data = map[string]any{domain.KeySources: sources}
	} else {
		nb.sources = []string{"Source 1"}
	}
	return nb
}

// Build returns the graph document, resolving edge names to socket positions.
func (b *Builder) Build() (*domain.GraphDocument, error) {
	doc := b.doc
	doc.Nodes = nil
	doc.Connections = nil

	var errs []error
	for _, nb := range b.nodes {
		doc.Nodes = append(doc.Nodes, nb.document())
		for _, e := range nb.edges {
			c, err := b.resolve(nb, e)
			if err != nil {
				errs = append(errs, fmt.Errorf("node %q: %w", nb.node.ID, err))
				continue
			}
			doc.Connections = append(doc.Connections, c)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("build graph %q: %w", doc.ID, err)
	}
	return &doc, nil
}

func (b *Builder) resolve(from *NodeBuilder, e edge) (domain.ConnectionDocument, error) {
	to, ok := b.index[e.target]
	if !ok {
		return domain.ConnectionDocument{}, fmt.Errorf("target %q: %w", e.target, domain.ErrNodeNotFound)
	}
	out, err := from.outputIndex(e.output, e.ret)
	if err != nil {
		return domain.ConnectionDocument{}, err
	}
	in := 0
	if e.source != "" {
		if in, err = to.sourceIndex(e.source); err != nil {
			return domain.ConnectionDocument{}, err
		}
	}
	return domain.ConnectionDocument{
		OutputNode:   from.node.ID,
		OutputSocket: strconv.Itoa(out),
		InputNode:    to.node.ID,
		InputSocket:  strconv.Itoa(in),
	}, nil
}

// BuildStore builds every graph into an in-memory store.
func BuildStore(builders ...*Builder) (*memory.Store, error) {
	docs := make([]*domain.GraphDocument, 0, len(builders))
	for _, b := range builders {
		doc, err := b.Build()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	store, err := memory.NewFromDocuments(docs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory store: %w", err)
	}
	return store, nil
}
