package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEventType categorizes audit events.
type AuditEventType string

const (
	AuditEventRunStart    AuditEventType = "run.start"
	AuditEventRunComplete AuditEventType = "run.complete"
	AuditEventRunError    AuditEventType = "run.error"
	AuditEventSourceLoad  AuditEventType = "source.load"
	AuditEventGraphStore  AuditEventType = "graph.store"
)

// AuditEvent represents a single audit log entry.
type AuditEvent struct {
	Timestamp   time.Time      `json:"timestamp"`
	EventType   AuditEventType `json:"event_type"`
	SessionID   string         `json:"session_id"`
	RunID       string         `json:"run_id,omitempty"`
	Operation   string         `json:"operation,omitempty"`
	Success     bool           `json:"success"`
	Duration    time.Duration  `json:"duration_ms,omitempty"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	ErrorDetail string         `json:"error_detail,omitempty"`
}

// AuditLogger appends one JSON line per event. A disabled logger drops
// every event.
type AuditLogger struct {
	mu        sync.Mutex
	writer    io.Writer
	sessionID string
	enabled   bool
}

// AuditConfig configures the audit logger.
type AuditConfig struct {
	// OutputPath is a file path or "stdout"/"stderr". Empty disables auditing.
	OutputPath string
	SessionID  string
}

// NewAuditLogger creates an audit logger. Files are opened for append.
func NewAuditLogger(config *AuditConfig) (*AuditLogger, error) {
	if config == nil || config.OutputPath == "" {
		return &AuditLogger{enabled: false}, nil
	}

	var writer io.Writer
	switch config.OutputPath {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		f, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		writer = f
	}

	sessionID := config.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	return &AuditLogger{
		writer:    writer,
		sessionID: sessionID,
		enabled:   true,
	}, nil
}

// NewWriterAuditLogger logs to an arbitrary writer.
func NewWriterAuditLogger(w io.Writer, sessionID string) *AuditLogger {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &AuditLogger{writer: w, sessionID: sessionID, enabled: true}
}

// Enabled reports whether events are written.
func (l *AuditLogger) Enabled() bool {
	return l != nil && l.enabled
}

// Log writes an audit event.
func (l *AuditLogger) Log(event *AuditEvent) error {
	if !l.Enabled() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.SessionID == "" {
		event.SessionID = l.sessionID
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	_, err = fmt.Fprintf(l.writer, "%s\n", data)
	return err
}

// LogRunStart logs the start of an operation.
func (l *AuditLogger) LogRunStart(runID, operation string, params map[string]string) error {
	return l.Log(&AuditEvent{
		EventType: AuditEventRunStart,
		RunID:     runID,
		Operation: operation,
		Success:   true,
		Message:   fmt.Sprintf("%s started", operation),
		Details:   map[string]any{"params": params},
	})
}

// LogSourceLoad logs how many classes a source produced.
func (l *AuditLogger) LogSourceLoad(runID, kind string, classes int, duration time.Duration) error {
	return l.Log(&AuditEvent{
		EventType: AuditEventSourceLoad,
		RunID:     runID,
		Success:   true,
		Duration:  duration,
		Message:   fmt.Sprintf("Loaded %d classes from %s", classes, kind),
		Details:   map[string]any{"source": kind, "classes": classes},
	})
}

// LogGraphStore logs a class graph persisted to the graph database.
func (l *AuditLogger) LogGraphStore(runID string, nodes, edges int, duration time.Duration) error {
	return l.Log(&AuditEvent{
		EventType: AuditEventGraphStore,
		RunID:     runID,
		Success:   true,
		Duration:  duration,
		Message:   fmt.Sprintf("Stored %d classes, %d subclass edges", nodes, edges),
		Details:   map[string]any{"nodes": nodes, "edges": edges},
	})
}

// LogRunEnd logs completion or failure of an operation.
func (l *AuditLogger) LogRunEnd(runID, operation string, duration time.Duration, details map[string]any, err error) error {
	event := &AuditEvent{
		EventType: AuditEventRunComplete,
		RunID:     runID,
		Operation: operation,
		Success:   err == nil,
		Duration:  duration,
		Message:   fmt.Sprintf("%s completed", operation),
		Details:   details,
	}
	if err != nil {
		event.EventType = AuditEventRunError
		event.Message = fmt.Sprintf("%s failed", operation)
		event.ErrorDetail = err.Error()
	}
	return l.Log(event)
}

// Close closes the audit logger (if using a file).
func (l *AuditLogger) Close() error {
	if !l.Enabled() {
		return nil
	}
	if closer, ok := l.writer.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}
	return nil
}
