package config

import (
	"fmt"
	"strings"
)

// Config is the single configuration structure for a stratify run.
// It is organized into sections that map one-to-one onto the pipeline
// components that consume them.
type Config struct {
	// Source describes the headerless input file
	Source SourceConfig `yaml:"source" json:"source"`

	// Destination describes the output file
	Destination DestinationConfig `yaml:"destination" json:"destination"`

	// Sampling controls the per-class draws
	Sampling SamplingConfig `yaml:"sampling" json:"sampling"`

	// Logging configures the global zap logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Observability holds optional metrics, trace and report outputs
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`

	// Print renders the combined subset to stdout before it is written
	Print bool `yaml:"print" json:"print"`
}

// SamplingConfig contains the stratified sampling settings.
type SamplingConfig struct {
	// TrainPerClass is the number of rows drawn per label for the train subset
	TrainPerClass int `yaml:"train_per_class" json:"train_per_class"`
	// TestPerClass is the number of rows drawn per label for the test subset
	TestPerClass int `yaml:"test_per_class" json:"test_per_class"`
	// Seed makes draws reproducible; nil draws a fresh seed per run
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	// ExcludeTrainFromTest removes train rows from the test candidates.
	// Off by default: test rows are drawn from the full source and may
	// repeat train rows.
	ExcludeTrainFromTest bool `yaml:"exclude_train_from_test" json:"exclude_train_from_test"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	// Level sets logging verbosity (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`
	// Encoding is json or console
	Encoding string `yaml:"encoding" json:"encoding"`
	// Development enables colored levels and error stacktraces
	Development bool `yaml:"development" json:"development"`
}

// ObservabilityConfig contains the optional run artifacts. Empty paths
// disable the corresponding output.
type ObservabilityConfig struct {
	// MetricsFile receives prometheus metrics in textfile-collector format
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`
	// TraceFile receives OpenTelemetry spans as JSON
	TraceFile string `yaml:"trace_file" json:"trace_file"`
	// ReportFile receives the JSON run report
	ReportFile string `yaml:"report_file" json:"report_file"`
}

// Default returns the configuration of the fixed iris run: iris.data in,
// iris_subset.csv out, 4 train rows and 1 test row per class, unseeded.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Path:        "iris.data",
			Delimiter:   ",",
			LabelColumn: -1,
		},
		Destination: DestinationConfig{
			Path:         "iris_subset.csv",
			Delimiter:    ",",
			IncludeIndex: true,
		},
		Sampling: SamplingConfig{
			TrainPerClass: 4,
			TestPerClass:  1,
		},
		Logging: LoggingConfig{
			Level:    "warn",
			Encoding: "console",
		},
		Print: true,
	}
}

// Validate validates the configuration for correctness.
// It checks required fields and ensures values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	if c.Destination.Path == "" {
		return fmt.Errorf("destination.path is required")
	}
	if _, err := c.Source.DelimiterRune(); err != nil {
		return fmt.Errorf("source.delimiter: %w", err)
	}
	if _, err := c.Destination.DelimiterRune(); err != nil {
		return fmt.Errorf("destination.delimiter: %w", err)
	}
	if c.Source.LabelColumn < -1 {
		return fmt.Errorf("source.label_column must be -1 (last column) or a 0-based position")
	}
	if c.Sampling.TrainPerClass <= 0 {
		return fmt.Errorf("sampling.train_per_class must be positive")
	}
	if c.Sampling.TestPerClass <= 0 {
		return fmt.Errorf("sampling.test_per_class must be positive")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("logging.encoding must be json or console")
	}
	return nil
}

// HasSeed returns true if sampling is reproducible
func (s *SamplingConfig) HasSeed() bool {
	return s.Seed != nil
}

// SetSeed fixes the sampling seed
func (s *SamplingConfig) SetSeed(seed uint64) {
	s.Seed = &seed
}
