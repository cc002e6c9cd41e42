// Package sampling implements per-class stratified sampling of a loaded
// table into a train subset and a test subset.
//
// Both subsets are drawn independently from the full table: a row picked
// for train may be picked again for test. Options.ExcludeTrainFromTest
// removes train rows from the test candidates instead.
package sampling

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand/v2"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"

	"github.com/ajitpratap0/stratify/pkg/config"
	"github.com/ajitpratap0/stratify/pkg/errors"
)

// ErrInsufficientRows is returned when a class has fewer rows than the
// number requested for it.
var ErrInsufficientRows = stderrors.New("insufficient rows")

// Options controls a Sampler
type Options struct {
	TrainPerClass        int
	TestPerClass         int
	Seed                 *uint64
	ExcludeTrainFromTest bool
}

// OptionsFromConfig maps the sampling section of the run configuration
func OptionsFromConfig(cfg config.SamplingConfig) Options {
	return Options{
		TrainPerClass:        cfg.TrainPerClass,
		TestPerClass:         cfg.TestPerClass,
		Seed:                 cfg.Seed,
		ExcludeTrainFromTest: cfg.ExcludeTrainFromTest,
	}
}

// Sampler draws rows uniformly at random without replacement within each
// class. It is not safe for concurrent use.
type Sampler struct {
	opts   Options
	seed   uint64
	seeded bool
	rng    *rand.Rand
	logger *zap.Logger
}

// NewSampler creates a sampler. Without a seed a fresh one is drawn, so two
// samplers built from the same Options generally disagree.
func NewSampler(opts Options, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sampler{
		opts:   opts,
		logger: logger.With(zap.String("component", "sampler")),
	}
	if opts.Seed != nil {
		s.seed = *opts.Seed
		s.seeded = true
	} else {
		s.seed = rand.Uint64()
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	return s
}

// Seed returns the seed in use and whether it was configured
func (s *Sampler) Seed() (uint64, bool) {
	return s.seed, s.seeded
}

// Sample draws n row positions per label, in group order. Within a label
// the positions come out in draw order.
func (s *Sampler) Sample(groups *Groups, n int) ([]int, error) {
	out := make([]int, 0, n*groups.Len())
	for _, label := range groups.Keys() {
		rows := groups.Indices(label)
		if len(rows) < n {
			return nil, errors.Wrap(ErrInsufficientRows, errors.ErrorTypeData,
				fmt.Sprintf("label %q has %d rows, %d requested", label, len(rows), n)).
				WithDetail("label", label).
				WithDetail("available", len(rows)).
				WithDetail("requested", n)
		}
		for _, p := range s.rng.Perm(len(rows))[:n] {
			out = append(out, rows[p])
		}
	}
	return out, nil
}

// Split holds the outcome of a stratified split
type Split struct {
	// Train and Test are the sampled subsets, Combined is Train followed by Test
	Train    dataframe.DataFrame
	Test     dataframe.DataFrame
	Combined dataframe.DataFrame

	// TrainRows and TestRows are the source row positions of each subset
	TrainRows []int
	TestRows  []int

	// LabelColumn is the column the rows were grouped by
	LabelColumn string
	// Labels lists the classes in group order
	Labels []string
	// SourceCounts is the number of source rows per class
	SourceCounts map[string]int
	// Overlap is the number of test rows that also appear in train
	Overlap int
	// Seed is the seed the draws were made with
	Seed   uint64
	Seeded bool
}

// ClassCount summarises one class of a Split
type ClassCount struct {
	Label  string
	Source int
	Train  int
	Test   int
}

// Split groups df by labelColumn and draws the train and test subsets.
func (s *Sampler) Split(ctx context.Context, df dataframe.DataFrame, labelColumn string) (*Split, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCanceled, "split canceled")
	}

	col := df.Col(labelColumn)
	if col.Err != nil {
		return nil, errors.Wrap(col.Err, errors.ErrorTypeNotFound, "label column not found").
			WithDetail("column", labelColumn)
	}
	labels := col.Records()

	groups := GroupBy(labels)
	train, err := s.Sample(groups, s.opts.TrainPerClass)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "train sample failed").
			WithDetail("subset", "train")
	}

	trainSet := make(map[int]struct{}, len(train))
	for _, i := range train {
		trainSet[i] = struct{}{}
	}

	testGroups := GroupBy(labels)
	if s.opts.ExcludeTrainFromTest {
		testGroups = testGroups.Without(trainSet)
	}
	test, err := s.Sample(testGroups, s.opts.TestPerClass)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "test sample failed").
			WithDetail("subset", "test")
	}

	overlap := 0
	for _, i := range test {
		if _, ok := trainSet[i]; ok {
			overlap++
		}
	}
	if overlap > 0 {
		s.logger.Warn("test subset repeats rows from the train subset",
			zap.Int("overlap_rows", overlap),
			zap.Int("test_rows", len(test)))
	}

	trainDF := df.Subset(train)
	if trainDF.Err != nil {
		return nil, errors.Wrap(trainDF.Err, errors.ErrorTypeInternal, "failed to subset train rows")
	}
	testDF := df.Subset(test)
	if testDF.Err != nil {
		return nil, errors.Wrap(testDF.Err, errors.ErrorTypeInternal, "failed to subset test rows")
	}
	combined := trainDF.RBind(testDF)
	if combined.Err != nil {
		return nil, errors.Wrap(combined.Err, errors.ErrorTypeInternal, "failed to concatenate subsets")
	}

	counts := make(map[string]int, groups.Len())
	for _, label := range groups.Keys() {
		counts[label] = groups.Size(label)
	}

	s.logger.Debug("split complete",
		zap.Int("classes", groups.Len()),
		zap.Int("train_rows", len(train)),
		zap.Int("test_rows", len(test)),
		zap.Uint64("seed", s.seed))

	return &Split{
		Train:        trainDF,
		Test:         testDF,
		Combined:     combined,
		TrainRows:    train,
		TestRows:     test,
		LabelColumn:  labelColumn,
		Labels:       groups.Keys(),
		SourceCounts: counts,
		Overlap:      overlap,
		Seed:         s.seed,
		Seeded:       s.seeded,
	}, nil
}

// ClassCounts returns per-class source, train and test row counts in
// group order.
func (sp *Split) ClassCounts() []ClassCount {
	train := countLabels(sp.Train, sp.LabelColumn)
	test := countLabels(sp.Test, sp.LabelColumn)

	out := make([]ClassCount, 0, len(sp.Labels))
	for _, label := range sp.Labels {
		out = append(out, ClassCount{
			Label:  label,
			Source: sp.SourceCounts[label],
			Train:  train[label],
			Test:   test[label],
		})
	}
	return out
}

func countLabels(df dataframe.DataFrame, column string) map[string]int {
	counts := make(map[string]int)
	col := df.Col(column)
	if col.Err != nil {
		return counts
	}
	for _, v := range col.Records() {
		counts[v]++
	}
	return counts
}
