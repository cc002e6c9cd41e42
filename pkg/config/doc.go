// Package config provides configuration management for stratify.
//
// A run is described by a single Config value whose sections map onto the
// pipeline components:
//
//   - Source: headerless input file, delimiter, label column
//   - Destination: output file, delimiter, index column
//   - Sampling: rows per class for train and test, seed, exclusion
//   - Logging: zap level and encoding
//   - Observability: optional metrics, trace and report files
//
// # Usage
//
//	cfg := config.Default()
//	if err := config.Load("stratify.yaml", cfg); err != nil {
//		log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// # Environment Variable Substitution
//
//	# stratify.yaml
//	source:
//	  path: ${DATA_DIR}/iris.data
//	sampling:
//	  train_per_class: 4
//	  test_per_class: 1
//
// Unset variables expand to the empty string.
package config
