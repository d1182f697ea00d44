// Package export drives one export call: it enumerates the ontology, builds
// the class graph or level table, renders the requested format and writes
// it to the caller's stream in a single write.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/efebarandurmaz/ontograph/internal/classgraph"
	"github.com/efebarandurmaz/ontograph/internal/hierarchy"
	"github.com/efebarandurmaz/ontograph/internal/observability"
	"github.com/efebarandurmaz/ontograph/internal/ontology"
)

// ErrOutputWrite wraps failures of the output stream.
var ErrOutputWrite = errors.New("output write failed")

// DefaultMaxLevel is the deepest level column of the level table.
const DefaultMaxLevel = 3

// Options configures a single export call.
type Options struct {
	Format   Format
	MaxLevel int
	// Logger receives anomaly diagnostics; slog.Default when nil.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Summary counts what an export processed and what it skipped.
type Summary struct {
	Format         Format `json:"format"`
	Classes        int    `json:"classes"`
	Nodes          int    `json:"nodes"`
	Edges          int    `json:"edges"`
	Rows           int    `json:"rows"`
	Bytes          int    `json:"bytes"`
	MissingURI     int    `json:"missing_uri"`
	Unclassifiable int    `json:"unclassifiable"`
	DuplicateIDs   int    `json:"duplicate_ids"`
	DanglingEdges  int    `json:"dangling_edges"`
}

// Anomalies is the number of per-class anomalies absorbed.
func (s *Summary) Anomalies() int {
	return s.MissingURI + s.Unclassifiable + s.DuplicateIDs + s.DanglingEdges
}

func (s *Summary) addGraph(g *classgraph.Graph) {
	s.Classes = g.Stats.Classes
	s.Nodes = g.Stats.TotalNodes
	s.Edges = g.Stats.TotalEdges
	s.MissingURI = g.Stats.MissingURI
	s.Unclassifiable = g.Stats.Unclassifiable
	s.DuplicateIDs = g.Stats.DuplicateIDs
	s.DanglingEdges = g.Stats.DanglingEdges
}

// Render produces the complete output of one format without writing it.
// On error no output is returned, so a cycle found midway never leaves a
// truncated document behind.
func Render(ctx context.Context, ont ontology.Ontology, opts Options) ([]byte, *Summary, error) {
	if _, ok := FormatRegistry[opts.Format]; !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
	if opts.MaxLevel < 0 {
		return nil, nil, fmt.Errorf("max level must be >= 0, got %d", opts.MaxLevel)
	}
	logger := opts.logger()
	summary := &Summary{Format: opts.Format}
	classes := ont.ListClasses()

	if opts.Format == FormatLevelMembership {
		wctx, span := observability.StartStageSpan(ctx, observability.StageWalk)
		walker := hierarchy.NewWalker(ont).WithLogger(logger)
		res, err := hierarchy.ToplevelMembership(wctx, walker, classes, opts.MaxLevel)
		if err != nil {
			observability.RecordError(span, err)
			span.End()
			return nil, nil, err
		}
		summary.Classes = res.Classes
		summary.Nodes = len(res.Rows)
		summary.Rows = len(res.Rows)
		summary.MissingURI = res.MissingURI
		summary.Unclassifiable = walker.Stats().Unclassifiable
		observability.RecordGraphResult(span, summary.Classes, summary.Nodes, 0, summary.Anomalies())
		span.End()

		_, span = observability.StartStageSpan(ctx, observability.StageSerialize)
		out := []byte(classgraph.ExportLevels(res.Rows, opts.MaxLevel))
		observability.RecordOutput(span, len(out))
		span.End()
		summary.Bytes = len(out)
		return out, summary, nil
	}

	bctx, span := observability.StartStageSpan(ctx, observability.StageBuild)
	g, err := classgraph.NewBuilder(logger).Build(bctx, ont, classes)
	if err != nil {
		observability.RecordError(span, err)
		span.End()
		return nil, nil, err
	}
	summary.addGraph(g)
	observability.RecordGraphResult(span, summary.Classes, summary.Nodes, summary.Edges, summary.Anomalies())
	span.End()

	_, span = observability.StartStageSpan(ctx, observability.StageSerialize)
	defer span.End()
	out, err := renderGraph(opts.Format, g)
	if err != nil {
		observability.RecordError(span, err)
		return nil, nil, err
	}
	observability.RecordOutput(span, len(out))
	summary.Bytes = len(out)
	return out, summary, nil
}

func renderGraph(format Format, g *classgraph.Graph) ([]byte, error) {
	switch format {
	case FormatTSV:
		return []byte(classgraph.ExportTSV(g)), nil
	case FormatNodeList:
		return []byte(classgraph.ExportNodeList(g)), nil
	case FormatEdgeList:
		return []byte(classgraph.ExportEdgeList(g)), nil
	case FormatJSON:
		return classgraph.ExportCytoscape(g)
	case FormatGraphML:
		return []byte(classgraph.ExportGraphML(g)), nil
	case FormatDOT:
		return []byte(classgraph.ExportDOT(g)), nil
	case FormatMermaid:
		return []byte(classgraph.ExportMermaid(g)), nil
	case FormatClassList:
		return []byte(classgraph.ExportClassList(g)), nil
	case FormatRootClasses:
		return []byte(classgraph.ExportRootClasses(g)), nil
	case FormatSubclasses:
		return []byte(classgraph.ExportSubclasses(g)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Export renders opts.Format and writes it to w. The returned summary is
// non-nil whenever rendering succeeded, even if the write then failed.
func Export(ctx context.Context, ont ontology.Ontology, opts Options, w io.Writer) (*Summary, error) {
	ctx, span := observability.StartExportSpan(ctx, "export", string(opts.Format))
	defer span.End()

	out, summary, err := Render(ctx, ont, opts)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("export %s: %w", opts.Format, err)
	}
	if _, err := w.Write(out); err != nil {
		err = fmt.Errorf("%w: %w", ErrOutputWrite, err)
		observability.RecordError(span, err)
		return summary, fmt.Errorf("export %s: %w", opts.Format, err)
	}
	observability.RecordOutput(span, len(out))
	opts.logger().Info("export complete",
		"format", string(opts.Format),
		"classes", summary.Classes,
		"nodes", summary.Nodes,
		"edges", summary.Edges,
		"bytes", summary.Bytes)
	return summary, nil
}
