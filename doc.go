// Package stratify builds small stratified train/test subsets of labelled
// tabular datasets.
//
// A run loads a headerless delimited file (the iris dataset by default),
// groups its rows by the label column, draws a fixed number of rows per
// class for a train subset and for a test subset, prints the combined
// subset and writes it, with a leading row index, to a new file.
//
// # Behaviour
//
// Train and test rows are drawn uniformly at random without replacement
// within each class. Test rows are drawn from the full source, so a test
// row may repeat a train row; such repeats are logged and counted. Setting
// sampling.exclude_train_from_test draws test rows only from the rows left
// after the train draw.
//
// Classes are visited in lexicographic label order. Runs are unseeded
// unless sampling.seed is set; the seed actually used is always reported.
//
// # Quick Start
//
//	stratify                                # iris.data -> iris_subset.csv
//	stratify -i data.csv -o subset.csv --seed 42
//	stratify --train-per-class 10 --test-per-class 5 --exclude-train-from-test
//	stratify config init stratify.yaml      # write the default configuration
//
// # Packages
//
//   - internal/pipeline: the load, split, print, write and report stages
//   - pkg/sampling: grouping and per-class draws
//   - pkg/connector: the CSV source and destination
//   - pkg/console: table rendering for the printed subset
//   - pkg/config: configuration structure, defaults and YAML loading
//   - pkg/metrics, pkg/observability, pkg/report: run metrics, tracing and
//     the JSON run report
//   - pkg/errors, pkg/logger: structured errors and zap logging
package stratify
