// Package validator produces an aggregated structural report for a live graph
// and every sub graph it references.
package validator

import (
	"errors"

	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
)

var errNoExitNode = errors.New("sub graph has no exit node")

// Report collects the findings of a validation run in discovery order.
type Report struct {
	Findings []*ValidationError `json:"findings"`
}

// Errors returns the findings with error severity.
func (r *Report) Errors() []*ValidationError {
	return r.filter(SeverityError)
}

// Warnings returns the findings with warning severity.
func (r *Report) Warnings() []*ValidationError {
	return r.filter(SeverityWarning)
}

// Err returns an *AggregateError holding the error findings, or nil.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	agg := &AggregateError{}
	for _, e := range errs {
		agg.Errors = append(agg.Errors, e)
	}
	return agg
}

func (r *Report) filter(s Severity) []*ValidationError {
	var out []*ValidationError
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// ValidateGraph checks g and, recursively, each referenced child graph.
// Node flags are refreshed through Graph.CheckAll as a side effect.
func ValidateGraph(g *graph.Graph) *Report {
	r := &Report{}
	if g == nil {
		r.Findings = append(r.Findings, &ValidationError{
			Severity: SeverityError,
			Reason:   domain.ErrEmptyGraph.Error(),
			Err:      domain.ErrEmptyGraph,
		})
		return r
	}
	v := &walker{report: r, seen: make(map[*graph.Graph]bool)}
	v.visit(g)
	return r
}

type walker struct {
	report *Report
	seen   map[*graph.Graph]bool
}

func (w *walker) add(g *graph.Graph, n *graph.Node, s Severity, reason string, err error) {
	f := &ValidationError{
		GraphID:   g.ID,
		GraphName: g.Name,
		Severity:  s,
		Reason:    reason,
		Err:       err,
	}
	if n != nil {
		f.NodeID = n.ID
		f.NodeName = n.Name
	}
	w.report.Findings = append(w.report.Findings, f)
}

func (w *walker) visit(g *graph.Graph) {
	if w.seen[g] {
		return
	}
	w.seen[g] = true

	nodes := g.Nodes()
	if len(nodes) == 0 {
		w.add(g, nil, SeverityError, domain.ErrEmptyGraph.Error(), domain.ErrEmptyGraph)
		return
	}
	entry := g.EntryNode()
	if entry == nil {
		w.add(g, nil, SeverityError, domain.ErrNoEntryNode.Error(), domain.ErrNoEntryNode)
	}
	if g.IsSubGraph && len(g.ExitNodes()) == 0 {
		w.add(g, nil, SeverityError, errNoExitNode.Error(), errNoExitNode)
	}

	g.CheckAll()
	for _, n := range nodes {
		w.checkFlags(g, n)
		w.checkSockets(g, n)
	}

	if entry != nil {
		reached := reachable(g, entry)
		for _, n := range nodes {
			if !reached[n.ID] && !n.Global {
				w.add(g, n, SeverityWarning, "unreachable from entry node", nil)
			}
		}
	}

	for _, n := range nodes {
		if n.SubGraph != nil && n.SubGraph.Graph != nil {
			w.visit(n.SubGraph.Graph)
		}
	}
}

// Reference problems make the node stall on entry, so they rank as errors.
// Unconnected sockets are legitimate dead ends and only warn.
func (w *walker) checkFlags(g *graph.Graph, n *graph.Node) {
	e := n.Errors
	if e.NoGraphReferenced {
		w.add(g, n, SeverityError, "no graph referenced", domain.ErrUnresolvedSubGraph)
	}
	if e.ReferencedGraphIsNotSubGraph {
		w.add(g, n, SeverityError, "referenced graph is not a sub graph", domain.ErrUnresolvedSubGraph)
	}
	if e.NoEnterNode {
		w.add(g, n, SeverityError, "referenced graph has no enter node", domain.ErrNoEntryNode)
	}
	soft := graph.NodeErrors{
		OutputNotConnected: e.OutputNotConnected,
		InputNotConnected:  e.InputNotConnected,
		TargetNotConnected: e.TargetNotConnected,
		NoSourceConnected:  e.NoSourceConnected,
	}
	for _, msg := range soft.Messages() {
		w.add(g, n, SeverityWarning, msg, nil)
	}
}

func (w *walker) checkSockets(g *graph.Graph, n *graph.Node) {
	for _, list := range [][]*graph.Socket{n.Inputs, n.Outputs} {
		for _, s := range list {
			if !s.Policy.Allows(s.ConnectionCount()) {
				w.add(g, n, SeverityError, "socket "+s.ID+" exceeds its connection policy", nil)
			}
		}
	}
}

// reachable walks output connections breadth first from entry.
func reachable(g *graph.Graph, entry *graph.Node) map[string]bool {
	visited := map[string]bool{entry.ID: true}
	queue := []*graph.Node{entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, out := range current.Outputs {
			for _, c := range out.Connections() {
				if visited[c.InputNodeID] {
					continue
				}
				visited[c.InputNodeID] = true
				if next := g.NodeByID(c.InputNodeID); next != nil {
					queue = append(queue, next)
				}
			}
		}
	}
	return visited
}
