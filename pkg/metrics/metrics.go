// Package metrics records run metrics for stratify with Prometheus.
//
// Each Collector owns its own registry, so independent runs (and tests)
// never share counters. A finished run can be dumped in the node-exporter
// textfile format with WriteTextfile.
//
// # Metrics
//
//	stratify_source_rows_total               rows loaded from the source
//	stratify_classes                         distinct labels in the source
//	stratify_sampled_rows_total{subset}      rows drawn per subset (train/test)
//	stratify_overlap_rows                    test rows that also appear in train
//	stratify_stage_duration_seconds{stage}   wall time per pipeline stage
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/stratify/pkg/errors"
)

const namespace = "stratify"

// Subset label values
const (
	SubsetTrain = "train"
	SubsetTest  = "test"
)

// Collector wraps the Prometheus metrics of one run
type Collector struct {
	name     string
	registry *prometheus.Registry

	sourceRows    prometheus.Counter
	classes       prometheus.Gauge
	sampledRows   *prometheus.CounterVec
	overlapRows   prometheus.Gauge
	stageDuration *prometheus.HistogramVec

	startTime time.Time
	mu        sync.RWMutex
	stages    map[string]time.Duration
}

// NewCollector creates a collector registered on a fresh registry.
// The name identifies the component in GetAll.
func NewCollector(name string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		name:     name,
		registry: reg,
		sourceRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rows_total",
			Help:      "Total number of rows loaded from the source",
		}),
		classes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "classes",
			Help:      "Number of distinct labels in the source",
		}),
		sampledRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sampled_rows_total",
			Help:      "Total number of rows drawn per subset",
		}, []string{"subset"}),
		overlapRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overlap_rows",
			Help:      "Number of test rows that also appear in the train subset",
		}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds",
			Buckets: []float64{
				0.0001, // 100µs
				0.001,  // 1ms
				0.01,   // 10ms
				0.1,    // 100ms
				1,      // 1s
				10,     // 10s
			},
		}, []string{"stage"}),
		startTime: time.Now(),
		stages:    make(map[string]time.Duration),
	}
}

// Registry returns the registry the collector's metrics live on
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// RecordSource records the size of the loaded source
func (c *Collector) RecordSource(rows, classes int) {
	c.sourceRows.Add(float64(rows))
	c.classes.Set(float64(classes))
}

// RecordSample records the rows drawn for one subset
func (c *Collector) RecordSample(subset string, rows int) {
	c.sampledRows.WithLabelValues(subset).Add(float64(rows))
}

// RecordOverlap records how many test rows repeat train rows
func (c *Collector) RecordOverlap(rows int) {
	c.overlapRows.Set(float64(rows))
}

// RecordStage records the duration of a pipeline stage
func (c *Collector) RecordStage(stage string, d time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())

	c.mu.Lock()
	c.stages[stage] += d
	c.mu.Unlock()
}

// StageDurations returns a copy of the accumulated stage durations
func (c *Collector) StageDurations() map[string]time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]time.Duration, len(c.stages))
	for k, v := range c.stages {
		out[k] = v
	}
	return out
}

// GetAll returns a summary of the collector state
func (c *Collector) GetAll() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stages := make(map[string]float64, len(c.stages))
	for k, v := range c.stages {
		stages[k] = v.Seconds()
	}

	return map[string]interface{}{
		"component":  c.name,
		"start_time": c.startTime,
		"uptime":     time.Since(c.startTime).Seconds(),
		"stages":     stages,
	}
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// The file is written atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write metrics file").
			WithDetail("path", path)
	}
	return nil
}

// Timer measures the duration of an operation
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the name the timer was created with
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed time since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObserveStage stops the timer and records it as a stage duration on c.
// A nil collector only returns the duration.
func (t *Timer) ObserveStage(c *Collector) time.Duration {
	d := t.Stop()
	if c != nil {
		c.RecordStage(t.name, d)
	}
	return d
}
