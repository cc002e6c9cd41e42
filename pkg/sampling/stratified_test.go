package sampling

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/stratify/pkg/errors"
	"github.com/ajitpratap0/stratify/pkg/testutil"
)

var irisClasses = []string{"Iris-setosa", "Iris-versicolor", "Iris-virginica"}

// frame builds a frame shaped like a loaded source: string columns named
// after their positions, label last.
func frame(t *testing.T, rows [][]string) dataframe.DataFrame {
	t.Helper()
	header := make([]string, len(rows[0]))
	for i := range header {
		header[i] = string(rune('0' + i))
	}
	df := dataframe.LoadRecords(append([][]string{header}, rows...),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String))
	require.NoError(t, df.Err)
	return df
}

func seeded(seed uint64) *uint64 { return &seed }

func defaultOptions() Options {
	return Options{TrainPerClass: 4, TestPerClass: 1}
}

func TestSampler_SampleDrawsDistinctRowsPerClass(t *testing.T) {
	labels := make([]string, 0, 30)
	for _, c := range irisClasses {
		for i := 0; i < 10; i++ {
			labels = append(labels, c)
		}
	}
	g := GroupBy(labels)
	s := NewSampler(defaultOptions(), nil)

	for run := 0; run < 50; run++ {
		rows, err := s.Sample(g, 4)
		require.NoError(t, err)
		require.Len(t, rows, 12)

		for k, class := range irisClasses {
			block := rows[k*4 : k*4+4]
			seen := map[int]bool{}
			for _, r := range block {
				assert.Equal(t, class, labels[r], "rows are emitted in group order")
				assert.False(t, seen[r], "row %d drawn twice", r)
				seen[r] = true
			}
		}
	}
}

func TestSampler_SampleInsufficientRows(t *testing.T) {
	g := GroupBy([]string{"a", "a", "a", "a", "b", "b", "b"})
	s := NewSampler(defaultOptions(), nil)

	_, err := s.Sample(g, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientRows)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))

	details := errors.Details(err)
	assert.Equal(t, "b", details["label"])
	assert.Equal(t, 3, details["available"])
	assert.Equal(t, 4, details["requested"])
}

func TestSampler_SeedIsReproducible(t *testing.T) {
	df := frame(t, testutil.UniformDataset(irisClasses, 10))
	opts := defaultOptions()
	opts.Seed = seeded(42)

	a, err := NewSampler(opts, nil).Split(context.Background(), df, "4")
	require.NoError(t, err)
	b, err := NewSampler(opts, nil).Split(context.Background(), df, "4")
	require.NoError(t, err)

	assert.Equal(t, a.TrainRows, b.TrainRows)
	assert.Equal(t, a.TestRows, b.TestRows)
	assert.Equal(t, a.Combined.Records(), b.Combined.Records())
	assert.True(t, a.Seeded)
	assert.Equal(t, uint64(42), a.Seed)
}

func TestSampler_UnseededRunsVary(t *testing.T) {
	df := frame(t, testutil.UniformDataset(irisClasses, 50))

	distinct := map[string]bool{}
	for i := 0; i < 10; i++ {
		sp, err := NewSampler(defaultOptions(), nil).Split(context.Background(), df, "4")
		require.NoError(t, err)
		require.Equal(t, 15, sp.Combined.Nrow())
		assert.False(t, sp.Seeded)

		key := make([]string, 0, len(sp.TrainRows))
		for _, r := range sp.TrainRows {
			key = append(key, strconv.Itoa(r))
		}
		distinct[strings.Join(key, ",")] = true
	}
	// 10 independent draws of 4 out of 50 per class colliding every time is
	// astronomically unlikely.
	assert.Greater(t, len(distinct), 1)
}

func TestSampler_SplitIrisShape(t *testing.T) {
	rows := testutil.UniformDataset(irisClasses, 10)
	df := frame(t, rows)

	sp, err := NewSampler(defaultOptions(), nil).Split(context.Background(), df, "4")
	require.NoError(t, err)

	assert.Equal(t, 12, sp.Train.Nrow())
	assert.Equal(t, 3, sp.Test.Nrow())
	assert.Equal(t, 15, sp.Combined.Nrow())
	assert.Equal(t, 5, sp.Combined.Ncol())
	assert.Equal(t, irisClasses, sp.Labels)

	// Combined is train then test, row for row.
	records := sp.Combined.Records()[1:]
	for i, r := range append(append([]int{}, sp.TrainRows...), sp.TestRows...) {
		assert.Equal(t, rows[r], records[i])
	}

	for _, cc := range sp.ClassCounts() {
		assert.Equal(t, 10, cc.Source, cc.Label)
		assert.Equal(t, 4, cc.Train, cc.Label)
		assert.Equal(t, 1, cc.Test, cc.Label)
	}
}

func TestSampler_SplitWithUnevenClasses(t *testing.T) {
	rows := testutil.Dataset([]string{"a", "b"}, map[string]int{"a": 4, "b": 9})
	df := frame(t, rows)

	sp, err := NewSampler(defaultOptions(), nil).Split(context.Background(), df, "4")
	require.NoError(t, err)

	// A class with exactly 4 rows puts all of them in train, so its test
	// row is necessarily a repeat.
	trainA := append([]int{}, sp.TrainRows[:4]...)
	sort.Ints(trainA)
	assert.Equal(t, []int{0, 1, 2, 3}, trainA)
	assert.Contains(t, trainA, sp.TestRows[0])
	assert.GreaterOrEqual(t, sp.Overlap, 1)
	assert.Equal(t, 10, sp.Combined.Nrow())
}

func TestSampler_SplitExcludeTrainFromTest(t *testing.T) {
	df := frame(t, testutil.UniformDataset(irisClasses, 5))
	opts := defaultOptions()
	opts.ExcludeTrainFromTest = true

	for run := 0; run < 25; run++ {
		sp, err := NewSampler(opts, nil).Split(context.Background(), df, "4")
		require.NoError(t, err)
		assert.Zero(t, sp.Overlap)

		train := map[int]bool{}
		for _, r := range sp.TrainRows {
			train[r] = true
		}
		for _, r := range sp.TestRows {
			assert.False(t, train[r], "test row %d also in train", r)
		}
	}

	// With exclusion a class needs train+test rows.
	small := frame(t, testutil.UniformDataset(irisClasses, 4))
	_, err := NewSampler(opts, nil).Split(context.Background(), small, "4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientRows)
	assert.Equal(t, "test", errors.Details(err)["subset"])
}

func TestSampler_SplitOverlapIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	df := frame(t, testutil.UniformDataset([]string{"only"}, 4))

	sp, err := NewSampler(defaultOptions(), zap.New(core)).Split(context.Background(), df, "4")
	require.NoError(t, err)
	assert.Equal(t, 1, sp.Overlap)

	entries := logs.FilterMessage("test subset repeats rows from the train subset").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["overlap_rows"])
}

func TestSampler_SplitErrors(t *testing.T) {
	df := frame(t, testutil.UniformDataset(irisClasses, 3))

	_, err := NewSampler(defaultOptions(), nil).Split(context.Background(), df, "4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientRows)
	assert.Equal(t, "train", errors.Details(err)["subset"])

	_, err = NewSampler(defaultOptions(), nil).Split(context.Background(), df, "9")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSampler(defaultOptions(), nil).Split(ctx, df, "4")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSampler_SeedReportsDrawnSeed(t *testing.T) {
	s := NewSampler(defaultOptions(), nil)
	_, ok := s.Seed()
	assert.False(t, ok)

	opts := defaultOptions()
	opts.Seed = seeded(7)
	seed, ok := NewSampler(opts, nil).Seed()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), seed)
}
