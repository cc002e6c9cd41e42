// Package pipeline runs the stratified subset builder end to end.
//
// A run is a fixed sequence of stages:
//
//	load   read the headerless source file into memory
//	split  group by label and draw the train and test subsets
//	print  render the combined subset to the console
//	write  replace the destination file with the combined subset
//	report write the optional metrics and JSON report files
//
// Every stage runs inside a tracing span and has its duration recorded.
// The first failing stage aborts the run, so a failed load or split never
// reaches the destination. Cancellation is checked between stages.
//
// # Basic Usage
//
//	p, err := pipeline.NewSubsetPipeline(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := p.Run(ctx)
package pipeline

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/stratify/pkg/config"
	csvdest "github.com/ajitpratap0/stratify/pkg/connector/destinations/csv"
	csvsource "github.com/ajitpratap0/stratify/pkg/connector/sources/csv"
	"github.com/ajitpratap0/stratify/pkg/console"
	"github.com/ajitpratap0/stratify/pkg/errors"
	"github.com/ajitpratap0/stratify/pkg/logger"
	"github.com/ajitpratap0/stratify/pkg/metrics"
	"github.com/ajitpratap0/stratify/pkg/observability"
	"github.com/ajitpratap0/stratify/pkg/report"
	"github.com/ajitpratap0/stratify/pkg/sampling"
)

// Stage names, used for spans, log fields and the stage duration metric
const (
	StageLoad   = "load"
	StageSplit  = "split"
	StagePrint  = "print"
	StageWrite  = "write"
	StageReport = "report"
)

// SubsetPipeline builds one train/test subset from a source file
type SubsetPipeline struct {
	config      *config.Config
	source      *csvsource.Source
	destination *csvdest.Destination

	output  io.Writer
	metrics *metrics.Collector
	version string

	// Run state
	mu         sync.Mutex
	runID      string
	startTime  time.Time
	duration   time.Duration
	sourceRows int
	classes    int
	trainRows  int
	testRows   int
	overlap    int
	seed       uint64
	completed  bool

	logger *zap.Logger
}

// Option configures a SubsetPipeline
type Option func(*SubsetPipeline)

// WithOutput sets where the subset is printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(p *SubsetPipeline) {
		p.output = w
	}
}

// WithMetrics sets the collector the run records into. Without it the
// pipeline creates its own.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *SubsetPipeline) {
		p.metrics = c
	}
}

// WithVersion sets the version written to the run report
func WithVersion(version string) Option {
	return func(p *SubsetPipeline) {
		p.version = version
	}
}

// Result is the outcome of a successful run
type Result struct {
	RunID string
	// Split holds the sampled subsets and their source row positions
	Split      *sampling.Split
	SourceRows int
	Classes    int
	Duration   time.Duration
	// Report is the run summary, also written to the report file if one
	// is configured
	Report *report.Report
}

// NewSubsetPipeline validates cfg and wires the source and destination
// connectors for it.
func NewSubsetPipeline(cfg *config.Config, log *zap.Logger, opts ...Option) (*SubsetPipeline, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid configuration")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "pipeline"))

	p := &SubsetPipeline{
		config:      cfg,
		source:      csvsource.NewSource(cfg.Source, log),
		destination: csvdest.NewDestination(cfg.Destination, log),
		output:      os.Stdout,
		version:     "dev",
		logger:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = metrics.NewCollector("pipeline")
	}
	return p, nil
}

// Run executes the stages in order and stops at the first error
func (p *SubsetPipeline) Run(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	p.runID = uuid.NewString()
	p.startTime = time.Now()
	p.completed = false
	runID := p.runID
	p.mu.Unlock()

	ctx = context.WithValue(ctx, logger.RunIDKey, runID)
	ctx, span := observability.StartSpan(ctx, "stratify.run")
	defer span.End()
	span.SetAttribute("run_id", runID)
	span.SetAttribute("source.path", p.config.Source.Path)
	span.SetAttribute("destination.path", p.config.Destination.Path)

	log := logger.WithContext(ctx, p.logger)
	log.Info("starting run",
		zap.String("source", p.config.Source.Path),
		zap.String("destination", p.config.Destination.Path),
		zap.Int("train_per_class", p.config.Sampling.TrainPerClass),
		zap.Int("test_per_class", p.config.Sampling.TestPerClass))

	result, err := p.run(ctx)
	if err != nil {
		span.RecordError(err)
		log.Error("run failed", zap.Error(err))
		return nil, err
	}

	p.mu.Lock()
	p.duration = time.Since(p.startTime)
	p.completed = true
	result.Duration = p.duration
	p.mu.Unlock()

	log.Info("run completed",
		zap.Int("source_rows", result.SourceRows),
		zap.Int("classes", result.Classes),
		zap.Int("subset_rows", result.Split.Combined.Nrow()),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func (p *SubsetPipeline) run(ctx context.Context) (*Result, error) {
	var (
		df    dataframe.DataFrame
		label string
		split *sampling.Split
		opts  = sampling.OptionsFromConfig(p.config.Sampling)
	)

	err := p.stage(ctx, StageLoad, func(ctx context.Context, span *observability.Span) error {
		var err error
		if df, err = p.source.Load(ctx); err != nil {
			return err
		}
		if label, err = p.source.LabelColumn(df); err != nil {
			return err
		}
		span.SetAttribute("rows", df.Nrow())
		span.SetAttribute("columns", df.Ncol())
		span.SetAttribute("label_column", label)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageSplit, func(ctx context.Context, span *observability.Span) error {
		var err error
		sampler := sampling.NewSampler(opts, logger.WithContext(ctx, p.logger))
		if split, err = sampler.Split(ctx, df, label); err != nil {
			return err
		}

		p.metrics.RecordSource(df.Nrow(), len(split.Labels))
		p.metrics.RecordSample(metrics.SubsetTrain, len(split.TrainRows))
		p.metrics.RecordSample(metrics.SubsetTest, len(split.TestRows))
		p.metrics.RecordOverlap(split.Overlap)

		p.mu.Lock()
		p.sourceRows = df.Nrow()
		p.classes = len(split.Labels)
		p.trainRows = len(split.TrainRows)
		p.testRows = len(split.TestRows)
		p.overlap = split.Overlap
		p.seed = split.Seed
		p.mu.Unlock()

		span.SetAttribute("classes", len(split.Labels))
		span.SetAttribute("seed", split.Seed)
		span.SetAttribute("seeded", split.Seeded)
		span.SetAttribute("overlap_rows", split.Overlap)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.config.Print {
		err = p.stage(ctx, StagePrint, func(_ context.Context, _ *observability.Span) error {
			if err := console.Render(p.output, split.Combined); err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to print subset")
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = p.stage(ctx, StageWrite, func(ctx context.Context, span *observability.Span) error {
		span.SetAttribute("path", p.destination.Path())
		return p.destination.Write(ctx, split.Combined)
	})
	if err != nil {
		return nil, err
	}

	rep := report.New(p.version, opts, split)
	rep.StartedAt = p.startTime
	rep.Source = report.SourceInfo{
		Path:        p.config.Source.Path,
		Rows:        df.Nrow(),
		Columns:     df.Ncol(),
		LabelColumn: label,
	}
	rep.Destination = report.DestinationInfo{
		Path:         p.destination.Path(),
		Rows:         p.destination.RowsWritten(),
		IncludeIndex: p.config.Destination.IncludeIndex,
	}

	err = p.stage(ctx, StageReport, func(_ context.Context, _ *observability.Span) error {
		return p.writeArtifacts(rep)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:      p.runID,
		Split:      split,
		SourceRows: df.Nrow(),
		Classes:    len(split.Labels),
		Report:     rep,
	}, nil
}

// stage runs fn under a span named after the stage and records its
// duration. The context is checked before fn runs.
func (p *SubsetPipeline) stage(ctx context.Context, name string, fn func(context.Context, *observability.Span) error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeCanceled, "run canceled").
			WithDetail("stage", name)
	}

	ctx = context.WithValue(ctx, logger.StageKey, name)
	ctx, span := observability.StartSpan(ctx, "stratify."+name)
	defer span.End()

	timer := metrics.NewTimer(name)
	err := fn(ctx, span)
	d := timer.ObserveStage(p.metrics)

	log := observability.WithTraceContext(ctx, logger.WithContext(ctx, p.logger))
	if err != nil {
		span.RecordError(err)
		log.Debug("stage failed", zap.Duration("duration", d), zap.Error(err))
		return err
	}
	log.Debug("stage completed", zap.Duration("duration", d))
	return nil
}

// writeArtifacts writes the report and metrics files that are configured.
// Stage durations cover every stage up to and including write.
func (p *SubsetPipeline) writeArtifacts(rep *report.Report) error {
	obs := p.config.Observability

	rep.Duration = time.Since(p.startTime).Seconds()
	rep.SetStages(p.metrics.StageDurations())

	if obs.ReportFile != "" {
		if err := rep.WriteFile(obs.ReportFile); err != nil {
			return err
		}
	}
	if obs.MetricsFile != "" {
		if err := p.metrics.WriteTextfile(obs.MetricsFile); err != nil {
			return err
		}
	}
	return nil
}

// Metrics returns a summary of the last run
func (p *SubsetPipeline) Metrics() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	duration := p.duration
	if !p.completed && !p.startTime.IsZero() {
		duration = time.Since(p.startTime)
	}

	return map[string]interface{}{
		"run_id":      p.runID,
		"completed":   p.completed,
		"source_rows": p.sourceRows,
		"classes":     p.classes,
		"train_rows":  p.trainRows,
		"test_rows":   p.testRows,
		"overlap":     p.overlap,
		"seed":        p.seed,
		"duration":    duration.String(),
		"stages":      p.metrics.GetAll()["stages"],
	}
}
