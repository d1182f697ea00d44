package classgraph

import (
	"context"
	"log/slog"

	"github.com/efebarandurmaz/ontograph/internal/hierarchy"
	"github.com/efebarandurmaz/ontograph/internal/ontology"
)

// Builder turns an ontology snapshot into a Graph.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a builder logging to l, or slog.Default when nil.
func NewBuilder(l *slog.Logger) *Builder {
	if l == nil {
		l = slog.Default()
	}
	return &Builder{logger: l}
}

// Build runs two passes over classes: the first emits one node per class
// with a URI, the second one edge per direct-subclass relation whose ends
// are both nodes. Classes without a URI are left out of both passes.
// ctx is checked between classes.
func (b *Builder) Build(ctx context.Context, ont ontology.Ontology, classes []ontology.ClassRef) (*Graph, error) {
	g := &Graph{Nodes: make([]Node, 0, len(classes)), Edges: make([]Edge, 0)}

	kept := make(map[ontology.ClassRef]hierarchy.ClassRecord, len(classes))
	seenIDs := make(map[string]ontology.ClassRef, len(classes))

	// 1. Nodes
	for _, c := range classes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.Stats.Classes++
		rec, ok := hierarchy.NewRecord(ont, c)
		if !ok {
			g.Stats.MissingURI++
			b.logger.Info("skipping class without uri", "class", string(c))
			continue
		}
		if first, dup := seenIDs[rec.ID]; dup {
			g.Stats.DuplicateIDs++
			b.logger.Warn("duplicate class id, keeping first", "id", rec.ID, "uri", rec.URI, "first", string(first))
			continue
		}
		seenIDs[rec.ID] = c
		kept[c] = rec

		sup := ont.Superclasses(c)
		if sup.Status == ontology.Unclassifiable {
			g.Stats.Unclassifiable++
			b.logger.Warn("cannot classify class, treating as root", "class", rec.URI, "error", sup.Err)
		}
		g.Nodes = append(g.Nodes, Node{ClassRecord: rec, Root: sup.Status != ontology.HasSuperclass})
	}

	// 2. Edges
	for _, c := range classes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parent, ok := kept[c]
		if !ok {
			if _, hasURI := ont.URI(c); hasURI {
				// duplicate id: its relations have no source node
				g.Stats.DanglingEdges += len(ont.DirectSubclasses(c))
			}
			continue
		}
		for _, sub := range ont.DirectSubclasses(c) {
			child, ok := kept[sub]
			if !ok {
				if _, hasURI := ont.URI(sub); hasURI {
					g.Stats.DanglingEdges++
					b.logger.Debug("skipping edge to class outside the node set", "source", parent.URI, "target", string(sub))
				}
				continue
			}
			g.Edges = append(g.Edges, Edge{
				Source:    parent.ID,
				Target:    child.ID,
				SourceURI: parent.URI,
				TargetURI: child.URI,
			})
		}
	}

	g.computeStats()
	b.logger.Debug("class graph built", "nodes", g.Stats.TotalNodes, "edges", g.Stats.TotalEdges)
	return g, nil
}

// Build builds a graph with the default logger.
func Build(ctx context.Context, ont ontology.Ontology, classes []ontology.ClassRef) (*Graph, error) {
	return NewBuilder(nil).Build(ctx, ont, classes)
}

// Roots returns the root nodes in enumeration order.
func (g *Graph) Roots() []Node {
	var roots []Node
	for _, n := range g.Nodes {
		if n.Root {
			roots = append(roots, n)
		}
	}
	return roots
}

// computeStats computes graph metrics
func (g *Graph) computeStats() {
	g.Stats.TotalNodes = len(g.Nodes)
	g.Stats.TotalEdges = len(g.Edges)
	g.Stats.RootCount = 0
	g.Stats.LeafCount = 0
	g.Stats.MaxFanOut = 0
	g.Stats.MaxFanIn = 0
	g.Stats.HotspotNode = ""

	fanOut := make(map[string]int)
	fanIn := make(map[string]int)
	for _, e := range g.Edges {
		fanOut[e.Source]++
		fanIn[e.Target]++
	}

	// Walk nodes, not maps, so the hotspot is stable across runs.
	for _, n := range g.Nodes {
		if n.Root {
			g.Stats.RootCount++
		}
		if fanOut[n.ID] == 0 {
			g.Stats.LeafCount++
		}
		if fanOut[n.ID] > g.Stats.MaxFanOut {
			g.Stats.MaxFanOut = fanOut[n.ID]
			g.Stats.HotspotNode = n.ID
		}
		if fanIn[n.ID] > g.Stats.MaxFanIn {
			g.Stats.MaxFanIn = fanIn[n.ID]
		}
	}

	g.Stats.ConnectedComponents = g.countComponents()
}

// countComponents counts connected components via union-find
func (g *Graph) countComponents() int {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if parent[x] == "" {
			parent[x] = x
		}
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		fa, fb := find(a), find(b)
		if fa != fb {
			parent[fa] = fb
		}
	}

	for _, n := range g.Nodes {
		find(n.ID)
	}
	for _, e := range g.Edges {
		union(e.Source, e.Target)
	}

	roots := make(map[string]bool)
	for _, n := range g.Nodes {
		roots[find(n.ID)] = true
	}
	return len(roots)
}
