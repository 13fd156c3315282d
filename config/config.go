// Package config loads and validates dashboard configuration: logging, the
// drill-matrix hierarchy, and per-function cache policies, from a single
// JSON document.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AaronQLF/dashTemplate/cache"
	"github.com/AaronQLF/dashTemplate/dataset"
	"github.com/AaronQLF/dashTemplate/errors"
)

// Config is the root configuration document.
type Config struct {
	Logging LoggingConfig           `json:"logging"`
	Matrix  MatrixConfig            `json:"matrix"`
	Caches  map[string]cache.Config `json:"caches,omitempty"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// MatrixConfig declares the drill hierarchy and the metrics aggregated at
// every level. Metrics may be omitted; numeric columns are then summed.
type MatrixConfig struct {
	GroupBy []string             `json:"group_by"`
	Metrics []dataset.MetricSpec `json:"metrics,omitempty"`
}

// Defaults fills unset optional fields in place.
func (c *Config) Defaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the whole document, reporting the first problem found.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return errors.WrapInvalid(err, "config", "Validate", "validate logging")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log format %q", c.Logging.Format),
			"config", "Validate", "validate logging")
	}

	if len(c.Matrix.GroupBy) == 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: matrix.group_by", errors.ErrMissingConfig),
			"config", "Validate", "validate matrix")
	}
	seen := make(map[string]bool, len(c.Matrix.GroupBy))
	for _, col := range c.Matrix.GroupBy {
		if col == "" {
			return errors.WrapInvalid(
				fmt.Errorf("matrix.group_by contains an empty column"),
				"config", "Validate", "validate matrix")
		}
		if seen[col] {
			return errors.WrapInvalid(
				fmt.Errorf("matrix.group_by repeats column %q", col),
				"config", "Validate", "validate matrix")
		}
		seen[col] = true
	}

	for name, cc := range c.Caches {
		if err := cc.Validate(); err != nil {
			return errors.Wrap(err, "config", "Validate", fmt.Sprintf("validate cache %q", name))
		}
	}
	return nil
}

// Parse decodes, defaults and validates a JSON document.
func Parse(data []byte) (Config, error) {
	var c Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&c); err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Parse", "decode config")
	}
	c.Defaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WrapFatal(err, "config", "Load", "read config file")
	}
	return Parse(data)
}

// BuildLogger constructs the slog logger the config describes, writing to w.
func (c Config) BuildLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Logging.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Logging.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
