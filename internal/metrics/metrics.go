package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Anomaly kinds absorbed during a run.
const (
	AnomalyMissingURI     = "missing_uri"
	AnomalyUnclassifiable = "unclassifiable"
	AnomalyDuplicateID    = "duplicate_id"
	AnomalyDanglingEdge   = "dangling_edge"
)

// RunMetrics collects statistics for one export run.
type RunMetrics struct {
	RunID      string         `json:"run_id"`
	Operation  string         `json:"operation"`
	Format     string         `json:"format,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
	Duration   time.Duration  `json:"duration_ms,omitempty"`
	Classes    int            `json:"classes"`
	Nodes      int            `json:"nodes"`
	Edges      int            `json:"edges"`
	Rows       int            `json:"rows,omitempty"`
	Bytes      int            `json:"bytes"`
	Anomalies  map[string]int `json:"anomalies,omitempty"`
	Error      string         `json:"error,omitempty"`

	registry  *prometheus.Registry
	classes   prometheus.Counter
	nodes     prometheus.Counter
	edges     prometheus.Counter
	anomalies *prometheus.CounterVec
	duration  prometheus.Gauge
	failures  prometheus.Counter
}

// New starts tracking a run of the given operation.
func New(operation string) *RunMetrics {
	m := &RunMetrics{
		RunID:     uuid.NewString(),
		Operation: operation,
		StartedAt: time.Now(),
		Anomalies: make(map[string]int),
		registry:  prometheus.NewRegistry(),
		classes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ontograph_classes_processed_total",
			Help: "Ontology classes enumerated.",
		}),
		nodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ontograph_nodes_exported_total",
			Help: "Class nodes written.",
		}),
		edges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ontograph_edges_exported_total",
			Help: "Subclass edges written.",
		}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ontograph_anomalies_total",
			Help: "Per-class anomalies absorbed, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ontograph_last_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ontograph_run_failures_total",
			Help: "Runs aborted by a fatal error.",
		}),
	}
	m.registry.MustRegister(m.classes, m.nodes, m.edges, m.anomalies, m.duration, m.failures)
	return m
}

// Record adds counts from a finished stage.
func (m *RunMetrics) Record(classes, nodes, edges int) {
	m.Classes += classes
	m.Nodes += nodes
	m.Edges += edges
	m.classes.Add(float64(classes))
	m.nodes.Add(float64(nodes))
	m.edges.Add(float64(edges))
}

// AddAnomaly counts n anomalies of kind. Zero counts are ignored.
func (m *RunMetrics) AddAnomaly(kind string, n int) {
	if n <= 0 {
		return
	}
	m.Anomalies[kind] += n
	m.anomalies.WithLabelValues(kind).Add(float64(n))
}

// Finish marks the run complete; err is nil for a successful run.
func (m *RunMetrics) Finish(err error) {
	m.FinishedAt = time.Now()
	m.Duration = m.FinishedAt.Sub(m.StartedAt)
	m.duration.Set(m.Duration.Seconds())
	if err != nil {
		m.Error = err.Error()
		m.failures.Inc()
	}
}

// Registry exposes the prometheus registry holding the run counters.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the counters in the node_exporter textfile format.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// PrintSummary writes a human-readable summary.
func (m *RunMetrics) PrintSummary(w io.Writer) {
	status := "OK"
	if m.Error != "" {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s run %s [%s] in %s\n", m.Operation, m.RunID, status, m.Duration.Round(time.Millisecond))
	if m.Format != "" {
		fmt.Fprintf(w, "  format:  %s\n", m.Format)
	}
	fmt.Fprintf(w, "  classes: %d, nodes: %d, edges: %d", m.Classes, m.Nodes, m.Edges)
	if m.Rows > 0 {
		fmt.Fprintf(w, ", rows: %d", m.Rows)
	}
	fmt.Fprintf(w, ", bytes: %s\n", formatBytes(m.Bytes))
	for _, kind := range []string{AnomalyMissingURI, AnomalyUnclassifiable, AnomalyDuplicateID, AnomalyDanglingEdge} {
		if n := m.Anomalies[kind]; n > 0 {
			fmt.Fprintf(w, "  skipped %s: %d\n", kind, n)
		}
	}
	if m.Error != "" {
		fmt.Fprintf(w, "  error:   %s\n", m.Error)
	}
}

// JSON returns the metrics as formatted JSON.
func (m *RunMetrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func formatBytes(b int) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
