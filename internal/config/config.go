package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ONTOGRAPH_EXPORT_FORMAT.
const EnvPrefix = "ONTOGRAPH"

// Config holds all application configuration.
type Config struct {
	Export  ExportConfig  `mapstructure:"export"`
	Source  SourceConfig  `mapstructure:"source"`
	Graph   GraphConfig   `mapstructure:"graph"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Audit   AuditConfig   `mapstructure:"audit"`
}

type ExportConfig struct {
	Format   string `mapstructure:"format"`
	MaxLevel int    `mapstructure:"max_level"`
	Output   string `mapstructure:"output"`
}

// SourceConfig selects the ontology backend: "file" reads a YAML snapshot
// from Path, "neo4j" reads the class hierarchy stored in the graph database.
type SourceConfig struct {
	Kind string `mapstructure:"kind"`
	Path string `mapstructure:"path"`
}

type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Environment string  `mapstructure:"environment"`
}

type MetricsConfig struct {
	// Textfile, when set, receives prometheus counters after each run.
	Textfile string `mapstructure:"textfile"`
}

type AuditConfig struct {
	// Path is an append-only JSON-lines file, "stdout" or "stderr".
	// Empty disables the audit trail.
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("export.format", "tsv")
	v.SetDefault("export.max_level", 3)
	v.SetDefault("export.output", "")
	v.SetDefault("source.kind", "file")
	v.SetDefault("source.path", "")
	v.SetDefault("graph.uri", "neo4j://localhost:7687")
	v.SetDefault("graph.username", "neo4j")
	v.SetDefault("graph.password", "")
	v.SetDefault("graph.database", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("audit.path", "")
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Export.MaxLevel < 0 {
		warnings = append(warnings, fmt.Sprintf("export max_level %d is negative", c.Export.MaxLevel))
	}

	switch c.Source.Kind {
	case "file":
		if c.Source.Path == "" {
			warnings = append(warnings, "source kind 'file' is configured but path is empty")
		}
	case "neo4j":
		if c.Graph.URI == "" {
			warnings = append(warnings, "source kind 'neo4j' is configured but graph uri is empty")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("unknown source kind '%s'", c.Source.Kind))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		warnings = append(warnings, err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		warnings = append(warnings, fmt.Sprintf("log format '%s' is not text or json", c.Log.Format))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		warnings = append(warnings, fmt.Sprintf("tracing sample_rate %.2f is outside [0.0, 1.0]", c.Tracing.SampleRate))
	}

	return warnings
}

// Load reads configuration from an optional file and the environment.
// An empty path yields defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// PrintWarnings writes validation warnings to stderr.
func (c *Config) PrintWarnings() {
	for _, warning := range c.Validate() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level '%s'", s)
	}
}

// NewLogger builds a slog logger writing to w. Each verbosity step lowers
// the configured level by one (warn -> info -> debug).
func (c LogConfig) NewLogger(w io.Writer, verbosity int) *slog.Logger {
	level, err := ParseLevel(c.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	level -= slog.Level(4 * verbosity)
	if level < slog.LevelDebug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
