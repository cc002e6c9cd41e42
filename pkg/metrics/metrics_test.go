package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/stratify/pkg/errors"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("pipeline")

	c.RecordSource(150, 3)
	c.RecordSample(SubsetTrain, 12)
	c.RecordSample(SubsetTest, 3)
	c.RecordOverlap(1)

	assert.Equal(t, 150.0, testutil.ToFloat64(c.sourceRows))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.classes))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.sampledRows.WithLabelValues(SubsetTrain)))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.sampledRows.WithLabelValues(SubsetTest)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.overlapRows))
}

func TestCollector_SeparateRegistries(t *testing.T) {
	a := NewCollector("a")
	b := NewCollector("b")

	a.RecordSource(10, 2)
	assert.Equal(t, 10.0, testutil.ToFloat64(a.sourceRows))
	assert.Zero(t, testutil.ToFloat64(b.sourceRows))
}

func TestCollector_RecordStage(t *testing.T) {
	c := NewCollector("pipeline")
	c.RecordStage("load", 20*time.Millisecond)
	c.RecordStage("load", 10*time.Millisecond)
	c.RecordStage("write", time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(c.stageDuration))
	assert.Equal(t, 30*time.Millisecond, c.StageDurations()["load"])

	all := c.GetAll()
	assert.Equal(t, "pipeline", all["component"])
	assert.InDelta(t, 0.03, all["stages"].(map[string]float64)["load"], 1e-9)
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector("pipeline")
	c.RecordSource(150, 3)
	c.RecordSample(SubsetTrain, 12)
	NewTimer("split").ObserveStage(c)

	path := filepath.Join(t.TempDir(), "stratify.prom")
	require.NoError(t, c.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "stratify_source_rows_total 150")
	assert.Contains(t, text, "stratify_classes 3")
	assert.Contains(t, text, `stratify_sampled_rows_total{subset="train"} 12`)
	assert.Contains(t, text, `stratify_stage_duration_seconds_count{stage="split"} 1`)

	expected := `
# HELP stratify_source_rows_total Total number of rows loaded from the source
# TYPE stratify_source_rows_total counter
stratify_source_rows_total 150
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "stratify_source_rows_total"))
}

func TestCollector_WriteTextfileError(t *testing.T) {
	c := NewCollector("pipeline")
	err := c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "stratify.prom"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestTimer(t *testing.T) {
	timer := NewTimer("load")
	time.Sleep(time.Millisecond)
	assert.Equal(t, "load", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), time.Millisecond)
	assert.Greater(t, timer.ObserveStage(nil), time.Duration(0))
}
