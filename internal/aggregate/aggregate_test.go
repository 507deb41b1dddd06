package aggregate

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ednelkit/adapters/tables"
	"ednelkit/domain/metrics"
	"ednelkit/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readableHeader = []string{"", "unweighted_area_under_roc", "correct", "confusion_matrix"}

func writeFold(t *testing.T, dir string, sample, fold int, header []string, rows ...[]string) {
	t.Helper()
	tbl := tables.New(header...)
	for _, r := range rows {
		tbl.AddRow(r...)
	}
	require.NoError(t, tables.WriteCSV(filepath.Join(dir, FoldFileName(sample, fold)), tbl))
}

// writeCompleteDataset fills a 2 samples x 2 folds overall directory for ensemble j48
func writeCompleteDataset(t *testing.T, overall string) {
	t.Helper()
	writeFold(t, overall, 1, 1, readableHeader, []string{"j48", "0.75", "10", "[[1, 2], [3, 4]]"})
	writeFold(t, overall, 1, 2, readableHeader, []string{"j48", "0.875", "12", "[[0, 1], [1, 0]]"})
	writeFold(t, overall, 2, 1, readableHeader, []string{"j48", "0.5", "8", "[[1, 2], [3, 4]]"})
	writeFold(t, overall, 2, 2, readableHeader, []string{"j48", "0.5", "10", "[[0, 1], [1, 0]]"})
}

func newTestAggregator(opts Options) (*Aggregator, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewAggregator(metrics.Default(), internal.NewLoggerTo(internal.LogLevelDebug, &buf), opts), &buf
}

func stat(t *testing.T, s *Summary, label, metric string) Stat {
	t.Helper()
	row, ok := s.Row(label)
	require.True(t, ok, label)
	idx := s.metricIndex(metric)
	require.GreaterOrEqual(t, idx, 0, metric)
	return row.Stats[idx]
}

func TestAggregateDataset_MeanOfMeans(t *testing.T) {
	overall := filepath.Join(t.TempDir(), "exp", "iris", OverallDir)
	require.NoError(t, os.MkdirAll(overall, 0o755))
	writeCompleteDataset(t, overall)

	a, _ := newTestAggregator(Options{})
	s, err := a.AggregateDataset(overall, 2, 2)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "exp", s.Experiment)
	assert.Equal(t, "iris", s.Dataset)
	assert.Len(t, s.Rows, 3)

	s1 := stat(t, s, "j48-sample-01", "unweighted_area_under_roc")
	assert.InDelta(t, 0.8125, s1.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.0078125), s1.Std, 1e-12)

	mom := stat(t, s, "j48-mean-of-means", "unweighted_area_under_roc")
	assert.InDelta(t, (0.8125+0.5)/2, mom.Mean, 1e-12)

	// sum-type metric: per-sample sums 22 and 18
	assert.Equal(t, 22.0, stat(t, s, "j48-sample-01", "correct").Mean)
	assert.Equal(t, 20.0, stat(t, s, "j48-mean-of-means", "correct").Mean)

	assert.FileExists(t, filepath.Join(overall, SummaryFile))
}

func TestAggregateDataset_ConfusionMatrixSum(t *testing.T) {
	overall := filepath.Join(t.TempDir(), "exp", "iris", OverallDir)
	require.NoError(t, os.MkdirAll(overall, 0o755))
	writeCompleteDataset(t, overall)

	a, _ := newTestAggregator(Options{})
	s, err := a.AggregateDataset(overall, 2, 2)
	require.NoError(t, err)

	cm := stat(t, s, "j48-sample-01", "confusion_matrix")
	require.NotNil(t, cm.Structure)
	assert.Equal(t, "[[1, 3], [4, 4]]", cm.MeanText())
	assert.True(t, math.IsNaN(cm.Std))

	mom := stat(t, s, "j48-mean-of-means", "confusion_matrix")
	assert.Equal(t, "[[1, 3], [4, 4]]", mom.MeanText())
	assert.True(t, math.IsNaN(mom.Std))

	// metrics absent from the fold files stay empty
	assert.True(t, math.IsNaN(stat(t, s, "j48-sample-01", "kappa").Mean))
}

func TestAggregateDataset_MissingFoldFile(t *testing.T) {
	overall := filepath.Join(t.TempDir(), "exp", "iris", OverallDir)
	require.NoError(t, os.MkdirAll(overall, 0o755))
	writeCompleteDataset(t, overall)
	require.NoError(t, os.WriteFile(filepath.Join(overall, SummaryFile), []byte("stale"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(overall, FoldFileName(2, 1))))

	a, logs := newTestAggregator(Options{})
	s, err := a.AggregateDataset(overall, 2, 2)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Contains(t, logs.String(), "skipping dataset iris of experiment exp")
	assert.NoFileExists(t, filepath.Join(overall, SummaryFile))
}

func TestAggregateDataset_CorruptOrInconsistentFolds(t *testing.T) {
	overall := filepath.Join(t.TempDir(), "exp", "iris", OverallDir)
	require.NoError(t, os.MkdirAll(overall, 0o755))
	writeCompleteDataset(t, overall)
	writeFold(t, overall, 1, 2, []string{"", "foo", "bar"}, []string{"j48", "1", "2"})

	a, _ := newTestAggregator(Options{})
	s, err := a.AggregateDataset(overall, 2, 2)
	require.NoError(t, err)
	assert.Nil(t, s)

	writeFold(t, overall, 1, 2, readableHeader, []string{"j48", "0.9", "12", "[[0, 1], [1, 0, 5]]"})
	s, err = a.AggregateDataset(overall, 2, 2)
	require.NoError(t, err)
	assert.Nil(t, s)

	writeFold(t, overall, 1, 2, readableHeader, []string{"naive_bayes", "0.9", "12", "[[0, 1], [1, 0]]"})
	s, err = a.AggregateDataset(overall, 2, 2)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestAggregateDataset_RawHeader(t *testing.T) {
	overall := filepath.Join(t.TempDir(), "exp", "iris", OverallDir)
	require.NoError(t, os.MkdirAll(overall, 0o755))
	raw := []string{"", "unweightedAreaUnderRoc", "pctCorrect", "confusionMatrix"}
	writeFold(t, overall, 1, 1, raw, []string{"ednel", "0.6", "70", "[[1, 0], [0, 1]]"})
	writeFold(t, overall, 1, 2, raw, []string{"ednel", "0.8", "90", "[[1, 0], [0, 1]]"})

	a, _ := newTestAggregator(Options{})
	s, err := a.AggregateDataset(overall, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.InDelta(t, 0.7, stat(t, s, "ednel-sample-01", "unweighted_area_under_roc").Mean, 1e-12)
	assert.InDelta(t, 80, stat(t, s, "ednel-mean-of-means", "percent_correct").Mean, 1e-12)
	// a single sample has no spread
	assert.True(t, math.IsNaN(stat(t, s, "ednel-mean-of-means", "percent_correct").Std))
}

func TestSummary_WriteAndReadBack(t *testing.T) {
	overall := filepath.Join(t.TempDir(), "exp", "iris", OverallDir)
	require.NoError(t, os.MkdirAll(overall, 0o755))
	writeCompleteDataset(t, overall)

	a, _ := newTestAggregator(Options{})
	_, err := a.AggregateDataset(overall, 2, 2)
	require.NoError(t, err)

	values, err := ReadMeanOfMeans(filepath.Join(overall, SummaryFile), "unweighted_area_under_roc")
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "j48-mean-of-means", values[0].Label)
	assert.Equal(t, "j48", values[0].Ensemble)
	assert.InDelta(t, 0.65625, values[0].Value, 1e-12)

	_, err = ReadMeanOfMeans(filepath.Join(overall, SummaryFile), "no_such_metric")
	assert.Error(t, err)
}

func TestDiscoverDepth(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "exp1", "iris", OverallDir), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "exp1", "notes"), 0o755))

	depth, err := DiscoverDepth(root)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	depth, err = DiscoverDepth(filepath.Join(root, "exp1"))
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	depth, err = DiscoverDepth(filepath.Join(root, "exp1", "iris"))
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	_, err = DiscoverDepth(t.TempDir())
	assert.True(t, errors.Is(err, ErrNoOverallMarker))

	_, err = DiscoverDepth(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestInferShape(t *testing.T) {
	root := t.TempDir()
	a1 := filepath.Join(root, "exp1", "iris", OverallDir)
	a2 := filepath.Join(root, "exp2", "iris", OverallDir)
	require.NoError(t, os.MkdirAll(a1, 0o755))
	require.NoError(t, os.MkdirAll(a2, 0o755))
	writeCompleteDataset(t, a1)
	writeFold(t, a2, 1, 3, readableHeader, []string{"j48", "0.8", "10", "[[1]]"})

	a, logs := newTestAggregator(Options{})
	n, k, err := a.InferShape(root)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, k)
	assert.Contains(t, logs.String(), "[WARN]")

	_, _, err = a.InferShape(t.TempDir())
	assert.Error(t, err)
}

func buildTwoExperimentTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, exp := range []string{"expA", "expB"} {
		complete := filepath.Join(root, exp, "iris", OverallDir)
		incomplete := filepath.Join(root, exp, "wine", OverallDir)
		require.NoError(t, os.MkdirAll(complete, 0o755))
		require.NoError(t, os.MkdirAll(incomplete, 0o755))
		writeCompleteDataset(t, complete)
		writeCompleteDataset(t, incomplete)
		require.NoError(t, os.Remove(filepath.Join(incomplete, FoldFileName(1, 2))))
		require.NoError(t, os.WriteFile(filepath.Join(root, exp, ParametersFile),
			[]byte(`{"n_generations": 100, "learning_rate": 0.7, "dataset_name": "iris"}`), 0o644))
	}
	return root
}

func TestWalkAndAggregate_SkipsIncompleteDatasets(t *testing.T) {
	root := buildTwoExperimentTree(t)

	a, logs := newTestAggregator(Options{})
	res, err := a.WalkAndAggregate(root)
	require.NoError(t, err)

	assert.Equal(t, 2, res.NSamples)
	assert.Equal(t, 2, res.NFolds)
	assert.Len(t, res.Summaries, 2)
	assert.Len(t, res.Skipped, 2)
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping dataset"))

	require.Len(t, res.FinalSummary.Rows, 2)
	assert.Equal(t, []string{"experiment_name", "dataset_name", "j48-mean-of-means"}, res.FinalSummary.Columns())
	assert.Equal(t, []string{"expA", "iris", "0.65625"}, res.FinalSummary.Rows[0])
	assert.Equal(t, []string{"expB", "iris", "0.65625"}, res.FinalSummary.Rows[1])

	assert.Equal(t, []string{"dataset_name", "expA_j48", "expB_j48"}, res.ForComparison.Columns())
	assert.Equal(t, [][]string{{"iris", "0.65625", "0.65625"}}, res.ForComparison.Rows)

	assert.Equal(t, []string{"experiment_name", "dataset_name", "learning_rate", "n_generations"}, res.Hyperparameters.Columns())
	assert.Equal(t, []string{"expA", "iris", "0.7", "100"}, res.Hyperparameters.Rows[0])

	for _, f := range []string{FinalSummaryFile, ForComparisonFile, HyperparametersFile} {
		assert.FileExists(t, filepath.Join(root, f))
	}
}

func TestWalkAndAggregate_NoFoldFiles(t *testing.T) {
	root := t.TempDir()
	for _, exp := range []string{"001", "002"} {
		overall := filepath.Join(root, exp, "iris", OverallDir)
		require.NoError(t, os.MkdirAll(overall, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(overall, SummaryFile), []byte("stale"), 0o644))
	}

	a, logs := newTestAggregator(Options{})
	res, err := a.WalkAndAggregate(root)
	require.NoError(t, err)

	assert.Empty(t, res.Summaries)
	assert.Len(t, res.Skipped, 2)
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping dataset"))
	assert.Empty(t, res.FinalSummary.Rows)
	assert.Empty(t, res.ForComparison.Rows)

	for _, f := range []string{FinalSummaryFile, ForComparisonFile, HyperparametersFile} {
		assert.FileExists(t, filepath.Join(root, f))
	}
	assert.NoFileExists(t, filepath.Join(root, "001", "iris", OverallDir, SummaryFile))
}

func TestWalkAndAggregate_MissingRootIsFatal(t *testing.T) {
	a, _ := newTestAggregator(Options{})
	_, err := a.WalkAndAggregate(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWalkAndAggregate_SingleExperiment(t *testing.T) {
	root := buildTwoExperimentTree(t)

	a, logs := newTestAggregator(Options{NSamples: 2, NFolds: 2})
	res, err := a.WalkAndAggregate(filepath.Join(root, "expA"))
	require.NoError(t, err)
	require.Len(t, res.FinalSummary.Rows, 1)
	assert.Equal(t, "expA", res.FinalSummary.Rows[0][0])
	assert.NotContains(t, logs.String(), "no parameters.json")
}

func TestCollect(t *testing.T) {
	root := buildTwoExperimentTree(t)

	a, logs := newTestAggregator(Options{})
	_, err := a.WalkAndAggregate(root)
	require.NoError(t, err)
	logs.Reset()

	final, err := a.Collect(root)
	require.NoError(t, err)
	assert.Len(t, final.Rows, 2)
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping dataset wine"))
}
