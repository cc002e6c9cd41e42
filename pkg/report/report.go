// Package report builds the JSON summary of a stratify run.
package report

import (
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/stratify/pkg/errors"
	"github.com/ajitpratap0/stratify/pkg/sampling"
)

// Report is the machine-readable summary of one run
type Report struct {
	Version     string             `json:"version"`
	StartedAt   time.Time          `json:"started_at"`
	Duration    float64            `json:"duration_seconds"`
	Source      SourceInfo         `json:"source"`
	Destination DestinationInfo    `json:"destination"`
	Sampling    SamplingInfo       `json:"sampling"`
	Classes     []ClassInfo        `json:"classes"`
	Totals      Totals             `json:"totals"`
	Stages      map[string]float64 `json:"stages_seconds,omitempty"`
}

// SourceInfo describes the input file
type SourceInfo struct {
	Path        string `json:"path"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	LabelColumn string `json:"label_column"`
}

// DestinationInfo describes the output file
type DestinationInfo struct {
	Path         string `json:"path"`
	Rows         int    `json:"rows"`
	IncludeIndex bool   `json:"include_index"`
}

// SamplingInfo records how the subsets were drawn. Seed is reported for
// unseeded runs too, so any run can be replayed.
type SamplingInfo struct {
	TrainPerClass        int    `json:"train_per_class"`
	TestPerClass         int    `json:"test_per_class"`
	Seed                 uint64 `json:"seed"`
	Seeded               bool   `json:"seeded"`
	ExcludeTrainFromTest bool   `json:"exclude_train_from_test"`
}

// ClassInfo holds the row counts of one class
type ClassInfo struct {
	Label  string `json:"label"`
	Source int    `json:"source"`
	Train  int    `json:"train"`
	Test   int    `json:"test"`
}

// Totals holds the row counts across classes
type Totals struct {
	Classes int `json:"classes"`
	Train   int `json:"train"`
	Test    int `json:"test"`
	Overlap int `json:"overlap"`
}

// New fills the sampling, class and total sections of a report from sp
func New(version string, opts sampling.Options, sp *sampling.Split) *Report {
	r := &Report{
		Version: version,
		Sampling: SamplingInfo{
			TrainPerClass:        opts.TrainPerClass,
			TestPerClass:         opts.TestPerClass,
			Seed:                 sp.Seed,
			Seeded:               sp.Seeded,
			ExcludeTrainFromTest: opts.ExcludeTrainFromTest,
		},
		Totals: Totals{
			Classes: len(sp.Labels),
			Train:   len(sp.TrainRows),
			Test:    len(sp.TestRows),
			Overlap: sp.Overlap,
		},
	}

	for _, cc := range sp.ClassCounts() {
		r.Classes = append(r.Classes, ClassInfo{
			Label:  cc.Label,
			Source: cc.Source,
			Train:  cc.Train,
			Test:   cc.Test,
		})
	}
	return r
}

// SetStages records per-stage durations
func (r *Report) SetStages(stages map[string]time.Duration) {
	r.Stages = make(map[string]float64, len(stages))
	for k, v := range stages {
		r.Stages[k] = v.Seconds()
	}
}

// Write encodes the report as indented JSON
func (r *Report) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// WriteFile writes the report to path, replacing any existing file
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode report")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write report").
			WithDetail("path", path)
	}
	return nil
}

// Read decodes a report written by WriteFile
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read report").
			WithDetail("path", path)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode report").
			WithDetail("path", path)
	}
	return &r, nil
}
