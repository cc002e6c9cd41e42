package main

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/stratify/pkg/config"
	"github.com/ajitpratap0/stratify/pkg/errors"
)

const envPrefix = "STRATIFY"

// flagKeys maps each run flag onto its configuration key. The key also
// names the environment variable: source.path is STRATIFY_SOURCE_PATH.
var flagKeys = map[string]string{
	"input":                   "source.path",
	"output":                  "destination.path",
	"delimiter":               "delimiter",
	"label-column":            "source.label_column",
	"train-per-class":         "sampling.train_per_class",
	"test-per-class":          "sampling.test_per_class",
	"seed":                    "sampling.seed",
	"exclude-train-from-test": "sampling.exclude_train_from_test",
	"log-level":               "logging.level",
	"log-encoding":            "logging.encoding",
	"metrics-file":            "observability.metrics_file",
	"trace-file":              "observability.trace_file",
	"report-file":             "observability.report_file",
}

func registerRunFlags(fs *pflag.FlagSet) {
	d := config.Default()

	fs.StringP("input", "i", d.Source.Path, "Headerless delimited input file")
	fs.StringP("output", "o", d.Destination.Path, "Output file, replaced on success")
	fs.String("delimiter", d.Source.Delimiter, `Field delimiter for input and output ("\t" or "tab" for tabs)`)
	fs.Int("label-column", d.Source.LabelColumn, "0-based position of the label column, -1 for the last column")
	fs.Int("train-per-class", d.Sampling.TrainPerClass, "Rows drawn per class for the train subset")
	fs.Int("test-per-class", d.Sampling.TestPerClass, "Rows drawn per class for the test subset")
	fs.Uint64("seed", 0, "Seed for reproducible draws (unseeded when not set)")
	fs.Bool("exclude-train-from-test", false, "Draw test rows only from rows not already in the train subset")
	fs.Bool("no-print", false, "Do not print the subset to stdout")
	fs.Bool("no-index", false, "Omit the row index column from the output file")
	fs.String("log-level", d.Logging.Level, "Log level (debug, info, warn, error)")
	fs.String("log-encoding", d.Logging.Encoding, "Log encoding (console, json)")
	fs.String("metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	fs.String("trace-file", "", "Write OpenTelemetry spans as JSON to this path")
	fs.String("report-file", "", "Write a JSON run report to this path")
}

// resolveConfig layers defaults, the optional YAML file, STRATIFY_*
// environment variables and explicitly set flags, in that order.
func resolveConfig(fs *pflag.FlagSet, configFile string) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		if err := config.Load(configFile, cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load configuration").
				WithDetail("path", configFile)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to bind flag").
				WithDetail("flag", name)
		}
	}

	if err := applyOverrides(v, cfg); err != nil {
		return nil, err
	}

	if changed(fs, "no-print") {
		noPrint, _ := fs.GetBool("no-print")
		cfg.Print = !noPrint
	}
	if changed(fs, "no-index") {
		noIndex, _ := fs.GetBool("no-index")
		cfg.Destination.IncludeIndex = !noIndex
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid configuration")
	}
	return cfg, nil
}

// applyOverrides copies every key viper has a value for onto cfg. Keys
// without a flag, such as print, are only reachable through the
// environment.
func applyOverrides(v *viper.Viper, cfg *config.Config) error {
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setBool := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	setString("source.path", &cfg.Source.Path)
	setString("destination.path", &cfg.Destination.Path)
	setString("source.delimiter", &cfg.Source.Delimiter)
	setString("destination.delimiter", &cfg.Destination.Delimiter)
	if v.IsSet("delimiter") {
		cfg.Source.Delimiter = v.GetString("delimiter")
		cfg.Destination.Delimiter = v.GetString("delimiter")
	}
	setInt("source.label_column", &cfg.Source.LabelColumn)
	setBool("destination.include_index", &cfg.Destination.IncludeIndex)

	setInt("sampling.train_per_class", &cfg.Sampling.TrainPerClass)
	setInt("sampling.test_per_class", &cfg.Sampling.TestPerClass)
	if v.IsSet("sampling.seed") {
		raw := strings.TrimSpace(v.GetString("sampling.seed"))
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid sampling seed").
				WithDetail("value", raw)
		}
		cfg.Sampling.SetSeed(seed)
	}
	setBool("sampling.exclude_train_from_test", &cfg.Sampling.ExcludeTrainFromTest)

	setString("logging.level", &cfg.Logging.Level)
	setString("logging.encoding", &cfg.Logging.Encoding)
	setBool("logging.development", &cfg.Logging.Development)

	setString("observability.metrics_file", &cfg.Observability.MetricsFile)
	setString("observability.trace_file", &cfg.Observability.TraceFile)
	setString("observability.report_file", &cfg.Observability.ReportFile)

	setBool("print", &cfg.Print)
	return nil
}

func changed(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}
