package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Export:  ExportConfig{Format: "tsv", MaxLevel: 3},
		Source:  SourceConfig{Kind: "file", Path: "onto.yaml"},
		Log:     LogConfig{Level: "warn", Format: "text"},
		Tracing: TracingConfig{SampleRate: 1.0},
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestValidate_Valid(t *testing.T) {
	if warnings := validConfig().Validate(); len(warnings) != 0 {
		t.Errorf("valid config should have no warnings, got %v", warnings)
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative max level", func(c *Config) { c.Export.MaxLevel = -1 }, "max_level"},
		{"file without path", func(c *Config) { c.Source.Path = "" }, "path is empty"},
		{"neo4j without uri", func(c *Config) { c.Source.Kind = "neo4j" }, "graph uri"},
		{"unknown source", func(c *Config) { c.Source.Kind = "sparql" }, "unknown source kind"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 2 }, "sample_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if warnings := cfg.Validate(); !hasWarning(warnings, tt.want) {
				t.Errorf("expected warning containing %q, got %v", tt.want, warnings)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Export.Format != "tsv" {
		t.Errorf("expected default format tsv, got %s", cfg.Export.Format)
	}
	if cfg.Export.MaxLevel != 3 {
		t.Errorf("expected default max_level 3, got %d", cfg.Export.MaxLevel)
	}
	if cfg.Source.Kind != "file" {
		t.Errorf("expected default source kind file, got %s", cfg.Source.Kind)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontograph.yaml")
	data := "export:\n  format: graphml\n  max_level: 5\nsource:\n  path: onto.yaml\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ONTOGRAPH_EXPORT_MAX_LEVEL", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Export.Format != "graphml" {
		t.Errorf("expected format graphml, got %s", cfg.Export.Format)
	}
	if cfg.Export.MaxLevel != 2 {
		t.Errorf("expected env override max_level=2, got %d", cfg.Export.MaxLevel)
	}
	if cfg.Source.Path != "onto.yaml" {
		t.Errorf("expected source path onto.yaml, got %s", cfg.Source.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseLevel(%q) error = %v, want error %v", tt.in, err, tt.err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_Verbosity(t *testing.T) {
	cfg := LogConfig{Level: "warn", Format: "text"}
	ctx := context.Background()

	quiet := cfg.NewLogger(&bytes.Buffer{}, 0)
	if quiet.Enabled(ctx, slog.LevelInfo) {
		t.Error("verbosity 0 should not log info")
	}
	if !cfg.NewLogger(&bytes.Buffer{}, 1).Enabled(ctx, slog.LevelInfo) {
		t.Error("verbosity 1 should log info")
	}
	if !cfg.NewLogger(&bytes.Buffer{}, 5).Enabled(ctx, slog.LevelDebug) {
		t.Error("high verbosity should log debug")
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "info", Format: "json"}.NewLogger(&buf, 0).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("expected JSON log line, got %s", buf.String())
	}
}

func TestLoad_AuditPathFromEnv(t *testing.T) {
	t.Setenv("ONTOGRAPH_AUDIT_PATH", "/var/log/ontograph/audit.jsonl")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Audit.Path != "/var/log/ontograph/audit.jsonl" {
		t.Errorf("expected audit path from env, got %q", cfg.Audit.Path)
	}
}
