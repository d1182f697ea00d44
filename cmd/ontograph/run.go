package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/efebarandurmaz/ontograph/internal/classgraph"
	"github.com/efebarandurmaz/ontograph/internal/config"
	"github.com/efebarandurmaz/ontograph/internal/export"
	"github.com/efebarandurmaz/ontograph/internal/graph"
	neo4jstore "github.com/efebarandurmaz/ontograph/internal/graph/neo4j"
	"github.com/efebarandurmaz/ontograph/internal/metrics"
	"github.com/efebarandurmaz/ontograph/internal/observability"
	"github.com/efebarandurmaz/ontograph/internal/ontology"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// sourceFlags selects the ontology backend from the command line.
type sourceFlags struct {
	input string
	kind  string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.input, "input", "i", "", "YAML ontology snapshot")
	cmd.Flags().StringVar(&s.kind, "source", "", "Ontology source: file or neo4j")
}

func (s sourceFlags) apply(cfg *config.Config) {
	if s.input != "" {
		cfg.Source.Path = s.input
		cfg.Source.Kind = "file"
	}
	if s.kind != "" {
		cfg.Source.Kind = s.kind
	}
}

// runEnv carries the resolved configuration of one command invocation.
type runEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	tracer *observability.TracerProvider
	audit  *observability.AuditLogger
	stdout io.Writer
	stderr io.Writer
}

func setup(cmd *cobra.Command, configPath string, verbosity int, src sourceFlags) (*runEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	src.apply(cfg)
	cfg.PrintWarnings()

	logger := cfg.Log.NewLogger(os.Stderr, verbosity)
	slog.SetDefault(logger)

	tp, err := observability.InitTracing(cmd.Context(), &observability.TracingConfig{
		ServiceName:    "ontograph",
		ServiceVersion: version,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	audit, err := observability.NewAuditLogger(&observability.AuditConfig{OutputPath: cfg.Audit.Path})
	if err != nil {
		_ = tp.Shutdown(cmd.Context())
		return nil, err
	}
	return &runEnv{cfg: cfg, logger: logger, tracer: tp, audit: audit, stdout: os.Stdout, stderr: os.Stderr}, nil
}

func (e *runEnv) close() {
	if err := e.audit.Close(); err != nil {
		e.logger.Warn("audit log close failed", "error", err)
	}
	if e.tracer == nil {
		return
	}
	if err := e.tracer.Shutdown(context.Background()); err != nil {
		e.logger.Warn("tracer shutdown failed", "error", err)
	}
}

// audited reports a failed audit write without failing the run.
func (e *runEnv) audited(err error) {
	if err != nil {
		e.logger.Warn("audit write failed", "error", err)
	}
}

// startRun begins metrics and the audit trail for one operation.
func (e *runEnv) startRun(operation string, params map[string]string) *metrics.RunMetrics {
	m := metrics.New(operation)
	e.audited(e.audit.LogRunStart(m.RunID, operation, params))
	return m
}

// openRepository connects to the configured graph store.
var openRepository = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (graph.Repository, error) {
	repo, err := neo4jstore.NewNeo4j(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database)
	if err != nil {
		return nil, err
	}
	return repo.WithLogger(logger), nil
}

// loadOntology materializes the configured source into a snapshot.
func loadOntology(ctx context.Context, env *runEnv, runID string) (*ontology.Memory, error) {
	ctx, span := observability.StartStageSpan(ctx, observability.StageLoad)
	defer span.End()
	start := time.Now()

	var (
		mem *ontology.Memory
		err error
	)
	switch env.cfg.Source.Kind {
	case "file":
		if env.cfg.Source.Path == "" {
			err = errors.New("no ontology input: pass --input or set source.path")
			break
		}
		mem, err = ontology.LoadFile(env.cfg.Source.Path)
	case "neo4j":
		var repo graph.Repository
		repo, err = openRepository(ctx, env.cfg, env.logger)
		if err != nil {
			break
		}
		defer repo.Close(ctx)
		mem, err = repo.LoadOntology(ctx)
	default:
		err = fmt.Errorf("unknown source kind %q", env.cfg.Source.Kind)
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	env.logger.Info("ontology loaded", "source", env.cfg.Source.Kind, "classes", mem.Len())
	env.audited(env.audit.LogSourceLoad(runID, env.cfg.Source.Kind, mem.Len(), time.Since(start)))
	return mem, nil
}

// outputSink writes to stdout, or to a file created on first write so a
// failed export leaves no empty file behind.
type outputSink struct {
	path   string
	stdout io.Writer
	f      *os.File
}

func newOutputSink(path string, stdout io.Writer) *outputSink {
	return &outputSink{path: path, stdout: stdout}
}

func (s *outputSink) Write(p []byte) (int, error) {
	if s.path == "" {
		return s.stdout.Write(p)
	}
	if s.f == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return 0, err
		}
		s.f = f
	}
	return s.f.Write(p)
}

func (s *outputSink) Close() error {
	if s.f == nil {
		return nil
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("%w: %w", export.ErrOutputWrite, err)
	}
	return nil
}

func listingFormat(kind string) export.Format {
	switch kind {
	case "roots":
		return export.FormatRootClasses
	case "subclasses":
		return export.FormatSubclasses
	default:
		return export.FormatClassList
	}
}

func recordSummary(m *metrics.RunMetrics, s *export.Summary) {
	if s == nil {
		return
	}
	m.Record(s.Classes, s.Nodes, s.Edges)
	m.Rows = s.Rows
	m.Bytes = s.Bytes
	m.AddAnomaly(metrics.AnomalyMissingURI, s.MissingURI)
	m.AddAnomaly(metrics.AnomalyUnclassifiable, s.Unclassifiable)
	m.AddAnomaly(metrics.AnomalyDuplicateID, s.DuplicateIDs)
	m.AddAnomaly(metrics.AnomalyDanglingEdge, s.DanglingEdges)
}

// finishRun always reports the run summary, even when err is non-nil.
func finishRun(env *runEnv, m *metrics.RunMetrics, err error, jsonReport bool) error {
	m.Finish(err)
	env.audited(env.audit.LogRunEnd(m.RunID, m.Operation, m.Duration, map[string]any{
		"classes":   m.Classes,
		"nodes":     m.Nodes,
		"edges":     m.Edges,
		"bytes":     m.Bytes,
		"anomalies": m.Anomalies,
	}, err))
	if jsonReport {
		data, jerr := m.JSON()
		if jerr != nil {
			return jerr
		}
		fmt.Fprintln(env.stderr, string(data))
	} else {
		m.PrintSummary(env.stderr)
	}
	if path := env.cfg.Metrics.Textfile; path != "" {
		if werr := m.WriteTextfile(path); werr != nil {
			env.logger.Warn("metrics textfile not written", "path", path, "error", werr)
		}
	}
	return err
}

func runExport(ctx context.Context, env *runEnv, jsonReport bool) error {
	m := env.startRun("export", map[string]string{
		"format":    env.cfg.Export.Format,
		"max_level": fmt.Sprint(env.cfg.Export.MaxLevel),
		"source":    env.cfg.Source.Kind,
		"output":    env.cfg.Export.Output,
	})
	format, err := export.ParseFormat(env.cfg.Export.Format)
	if err != nil {
		return finishRun(env, m, err, jsonReport)
	}
	m.Format = string(format)

	ont, err := loadOntology(ctx, env, m.RunID)
	if err != nil {
		return finishRun(env, m, err, jsonReport)
	}

	sink := newOutputSink(env.cfg.Export.Output, env.stdout)
	summary, err := export.Export(ctx, ont, export.Options{
		Format:   format,
		MaxLevel: env.cfg.Export.MaxLevel,
		Logger:   env.logger,
	}, sink)
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	recordSummary(m, summary)
	return finishRun(env, m, err, jsonReport)
}

func runDescribe(ctx context.Context, env *runEnv, jsonOutput, stats bool) error {
	m := env.startRun("describe", map[string]string{"source": env.cfg.Source.Kind})
	ont, err := loadOntology(ctx, env, m.RunID)
	if err != nil {
		return finishRun(env, m, err, false)
	}
	d, err := export.Describe(ctx, ont, env.logger)
	if err != nil {
		return finishRun(env, m, err, false)
	}
	m.Record(d.Classes, d.NamedClasses, d.Relations)
	m.AddAnomaly(metrics.AnomalyUnclassifiable, d.Unclassifiable)

	if jsonOutput {
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return finishRun(env, m, err, false)
		}
		fmt.Fprintln(env.stdout, string(data))
	} else {
		fmt.Fprint(env.stdout, d.String())
		if stats {
			fmt.Fprintln(env.stdout)
			fmt.Fprint(env.stdout, d.GraphStats())
		}
	}
	return finishRun(env, m, nil, false)
}

func runPush(ctx context.Context, env *runEnv) error {
	m := env.startRun("push", map[string]string{"source": env.cfg.Source.Kind, "graph": env.cfg.Graph.URI})
	ont, err := loadOntology(ctx, env, m.RunID)
	if err != nil {
		return finishRun(env, m, err, false)
	}

	ctx, span := observability.StartExportSpan(ctx, "push", "neo4j")
	defer span.End()

	g, err := classgraph.NewBuilder(env.logger).Build(ctx, ont, ont.ListClasses())
	if err != nil {
		observability.RecordError(span, err)
		return finishRun(env, m, err, false)
	}
	m.Record(g.Stats.Classes, g.Stats.TotalNodes, g.Stats.TotalEdges)
	m.AddAnomaly(metrics.AnomalyMissingURI, g.Stats.MissingURI)
	m.AddAnomaly(metrics.AnomalyUnclassifiable, g.Stats.Unclassifiable)
	m.AddAnomaly(metrics.AnomalyDuplicateID, g.Stats.DuplicateIDs)
	m.AddAnomaly(metrics.AnomalyDanglingEdge, g.Stats.DanglingEdges)

	sctx, store := observability.StartStageSpan(ctx, observability.StageStore)
	defer store.End()
	repo, err := openRepository(sctx, env.cfg, env.logger)
	if err != nil {
		observability.RecordError(store, err)
		return finishRun(env, m, fmt.Errorf("push: %w", err), false)
	}
	defer repo.Close(sctx)
	start := time.Now()
	if err := repo.StoreGraph(sctx, g); err != nil {
		observability.RecordError(store, err)
		return finishRun(env, m, fmt.Errorf("push: %w", err), false)
	}
	env.audited(env.audit.LogGraphStore(m.RunID, g.Stats.TotalNodes, g.Stats.TotalEdges, time.Since(start)))
	return finishRun(env, m, nil, false)
}

// subclassStatement renders one relation the way the subclasses listing does.
func subclassStatement(sub, parent string) string {
	return fmt.Sprintf("<%s>\trdfs:subClassOf\t<%s> .", sub, parent)
}

// directSubclassURIs resolves uri in a loaded snapshot and returns the URIs
// of its direct subclasses. Anonymous subclasses have no URI and are left out.
func directSubclassURIs(ont ontology.Ontology, uri string) ([]string, error) {
	for _, c := range ont.ListClasses() {
		if u, ok := ont.URI(c); !ok || u != uri {
			continue
		}
		var uris []string
		for _, sub := range ont.DirectSubclasses(c) {
			if su, ok := ont.URI(sub); ok {
				uris = append(uris, su)
			}
		}
		return uris, nil
	}
	return nil, fmt.Errorf("class %s: %w", uri, ontology.ErrUnknownClass)
}

// runSubclassesOf lists the direct subclasses of one class. A neo4j source
// is queried in place; a file source is loaded and searched.
func runSubclassesOf(ctx context.Context, env *runEnv, uri string) error {
	m := env.startRun("subclasses", map[string]string{"source": env.cfg.Source.Kind, "class": uri})

	var (
		uris []string
		err  error
	)
	if env.cfg.Source.Kind == "neo4j" {
		qctx, span := observability.StartStageSpan(ctx, observability.StageLoad)
		var repo graph.Repository
		repo, err = openRepository(qctx, env.cfg, env.logger)
		if err == nil {
			uris, err = repo.QuerySubclasses(qctx, uri)
			if cerr := repo.Close(qctx); cerr != nil {
				env.logger.Warn("graph store close failed", "error", cerr)
			}
		}
		observability.RecordError(span, err)
		span.End()
	} else {
		var ont *ontology.Memory
		if ont, err = loadOntology(ctx, env, m.RunID); err == nil {
			uris, err = directSubclassURIs(ont, uri)
		}
	}
	if err != nil {
		return finishRun(env, m, fmt.Errorf("subclasses of %s: %w", uri, err), false)
	}

	for _, u := range uris {
		fmt.Fprintln(env.stdout, subclassStatement(u, uri))
	}
	m.Record(0, 0, len(uris))
	return finishRun(env, m, nil, false)
}
