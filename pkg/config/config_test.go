package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, -1, cfg.Source.LabelColumn)
	assert.True(t, cfg.Destination.IncludeIndex)
	assert.True(t, cfg.Print)
	assert.False(t, cfg.Sampling.ExcludeTrainFromTest)
	assert.Nil(t, cfg.Sampling.Seed)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{"missing source", func(c *Config) { c.Source.Path = "" }, "source.path is required"},
		{"missing destination", func(c *Config) { c.Destination.Path = "" }, "destination.path is required"},
		{"bad source delimiter", func(c *Config) { c.Source.Delimiter = ";;" }, "source.delimiter"},
		{"quote delimiter", func(c *Config) { c.Destination.Delimiter = `"` }, "destination.delimiter"},
		{"label column", func(c *Config) { c.Source.LabelColumn = -2 }, "source.label_column"},
		{"zero train", func(c *Config) { c.Sampling.TrainPerClass = 0 }, "train_per_class"},
		{"negative test", func(c *Config) { c.Sampling.TestPerClass = -1 }, "test_per_class"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log encoding", func(c *Config) { c.Logging.Encoding = "xml" }, "logging.encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ',', false},
		{",", ',', false},
		{";", ';', false},
		{`\t`, '\t', false},
		{"tab", '\t', false},
		{"|", '|', false},
		{"ab", 0, true},
		{"\n", 0, true},
	}

	for _, tt := range tests {
		src := SourceConfig{Delimiter: tt.in}
		got, err := src.DelimiterRune()
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stratify.yaml")

	cfg := Default()
	cfg.Source.Path = "data/wine.data"
	cfg.Sampling.SetSeed(42)
	cfg.Sampling.ExcludeTrainFromTest = true
	cfg.Observability.ReportFile = "report.json"
	require.NoError(t, Save(path, cfg))

	loaded := Default()
	require.NoError(t, Load(path, loaded))
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("destination:\n  path: out.csv\n"), 0o600))

	cfg := Default()
	require.NoError(t, Load(path, cfg))
	assert.Equal(t, "out.csv", cfg.Destination.Path)
	assert.Equal(t, "iris.data", cfg.Source.Path)
	assert.Equal(t, 4, cfg.Sampling.TrainPerClass)
}

func TestLoad_Errors(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sampling: [unclosed"), 0o600))
	err = Load(path, Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("STRATIFY_TEST_A", "alpha")
	t.Setenv("STRATIFY_TEST_B", "beta")

	assert.Equal(t, "alpha/beta.csv", substituteEnvVars("${STRATIFY_TEST_A}/${STRATIFY_TEST_B}.csv"))
	assert.Equal(t, "x//y", substituteEnvVars("x/${STRATIFY_TEST_UNSET}/y"))
	assert.Equal(t, "no vars", substituteEnvVars("no vars"))
	assert.Equal(t, "broken ${TAIL", substituteEnvVars("broken ${TAIL"))
}
