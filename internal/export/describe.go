package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/efebarandurmaz/ontograph/internal/classgraph"
	"github.com/efebarandurmaz/ontograph/internal/hierarchy"
	"github.com/efebarandurmaz/ontograph/internal/observability"
	"github.com/efebarandurmaz/ontograph/internal/ontology"
)

// Description summarizes the shape of an ontology's class hierarchy.
type Description struct {
	Classes        int    `json:"classes"`
	NamedClasses   int    `json:"named_classes"`
	Roots          int    `json:"roots"`
	Leaves         int    `json:"leaves"`
	Relations      int    `json:"subclass_relations"`
	Components     int    `json:"connected_components"`
	MaxDepth       int    `json:"max_depth"`
	DeepestClass   string `json:"deepest_class,omitempty"`
	Unclassifiable int    `json:"unclassifiable"`

	graph *classgraph.Graph
}

// Describe builds the class graph and measures the minimal depth of every
// named class. A cycle in the superclass relation aborts it.
func Describe(ctx context.Context, ont ontology.Ontology, logger *slog.Logger) (*Description, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, span := observability.StartExportSpan(ctx, "describe", "")
	defer span.End()

	classes := ont.ListClasses()
	g, err := classgraph.NewBuilder(logger).Build(ctx, ont, classes)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	d := &Description{
		Classes:        g.Stats.Classes,
		NamedClasses:   g.Stats.TotalNodes,
		Roots:          g.Stats.RootCount,
		Leaves:         g.Stats.LeafCount,
		Relations:      g.Stats.TotalEdges,
		Components:     g.Stats.ConnectedComponents,
		Unclassifiable: g.Stats.Unclassifiable,
		graph:          g,
	}

	walker := hierarchy.NewWalker(ont).WithLogger(logger)
	for _, c := range classes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		uri, ok := ont.URI(c)
		if !ok {
			continue
		}
		path, err := walker.MinimalAncestorPath(c)
		if err != nil {
			observability.RecordError(span, err)
			return nil, fmt.Errorf("depth of %s: %w", uri, err)
		}
		if len(path) > d.MaxDepth {
			d.MaxDepth = len(path)
			d.DeepestClass = uri
		}
	}
	observability.RecordGraphResult(span, d.Classes, d.NamedClasses, d.Relations, g.Stats.MissingURI+d.Unclassifiable)
	return d, nil
}

// String renders the description as aligned key/value lines.
func (d *Description) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classes:             %d\n", d.Classes)
	fmt.Fprintf(&b, "Named classes:       %d\n", d.NamedClasses)
	fmt.Fprintf(&b, "Root classes:        %d\n", d.Roots)
	fmt.Fprintf(&b, "Leaf classes:        %d\n", d.Leaves)
	fmt.Fprintf(&b, "Subclass relations:  %d\n", d.Relations)
	fmt.Fprintf(&b, "Components:          %d\n", d.Components)
	fmt.Fprintf(&b, "Max depth:           %d", d.MaxDepth)
	if d.DeepestClass != "" {
		fmt.Fprintf(&b, " (%s)", d.DeepestClass)
	}
	b.WriteString("\n")
	if d.Unclassifiable > 0 {
		fmt.Fprintf(&b, "Unclassifiable:      %d\n", d.Unclassifiable)
	}
	return b.String()
}

// GraphStats renders the fan-in/fan-out and anomaly report of the graph
// the description was computed from.
func (d *Description) GraphStats() string {
	if d.graph == nil {
		return ""
	}
	return classgraph.FormatStats(d.graph)
}
