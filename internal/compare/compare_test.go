package compare

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWilcoxon_AllPositive(t *testing.T) {
	test, err := Wilcoxon([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	require.NoError(t, err)
	assert.Equal(t, 10, test.N)
	assert.Equal(t, 0.0, test.Statistic)
	assert.InDelta(t, 0.005062032126267879, test.PValue, 1e-9)
}

func TestWilcoxon_TiesAndZeros(t *testing.T) {
	test, err := Wilcoxon([]float64{1, 1, 2, 2, 2, 3, -1, 4, 5, 6, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 10, test.N)
	assert.Equal(t, 2.0, test.Statistic)
	assert.InDelta(t, 0.008980143361139614, test.PValue, 1e-9)
}

func TestWilcoxon_TooFew(t *testing.T) {
	test, err := Wilcoxon([]float64{1, 2, 3, 0, 0, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrTooFewSamples)
	assert.True(t, math.IsNaN(test.PValue))
}

func TestWilcoxon_MinSamplesBoundary(t *testing.T) {
	diffs := make([]float64, MinSamples)
	for i := range diffs {
		diffs[i] = float64(i + 1)
	}

	_, err := Wilcoxon(diffs[:MinSamples-1])
	assert.ErrorIs(t, err, ErrTooFewSamples)

	test, err := Wilcoxon(diffs)
	require.NoError(t, err)
	assert.Equal(t, MinSamples, test.N)
}

func removalMatrix() *Matrix {
	diffs := []float64{0.05, -0.5, 0.01, 0.02, -0.4, 0.03, 0.04, -0.3, 0.06, 0.07, 0.08, 0.09, 0.1, 0.11}
	m := &Matrix{Algorithms: []string{"ednel", "random_forest"}}
	for i, d := range diffs {
		m.Datasets = append(m.Datasets, fmt.Sprintf("d%02d", i+1))
		m.Values = append(m.Values, []float64{d, 0})
	}
	return m
}

func TestRemoveUntilSignificant(t *testing.T) {
	m := removalMatrix()

	r, err := m.RemoveUntilSignificant("ednel", "random_forest", DefaultAlpha)
	require.NoError(t, err)
	assert.Equal(t, []string{"d02", "d05"}, r.Removed)
	assert.InDelta(t, 0.03417047269222939, r.PValue, 1e-9)

	_, err = m.RemoveUntilSignificant("ednel", "svm", DefaultAlpha)
	assert.Error(t, err)
}

func TestRemoveUntilSignificant_StopsWhenTooFew(t *testing.T) {
	m := removalMatrix()

	// an unreachable level keeps removing until the test no longer applies
	r, err := m.RemoveUntilSignificant("ednel", "random_forest", 1e-12)
	require.NoError(t, err)
	assert.Len(t, r.Removed, 5)
}

func TestAnalyzeAndTables(t *testing.T) {
	m := removalMatrix()
	removals, err := m.Analyze([]string{"random_forest"}, DefaultAlpha)
	require.NoError(t, err)
	require.Len(t, removals, 1)

	tbl := RemovalTable(removals)
	assert.Equal(t, []string{"algorithm", "baseline", "p value", "n_removed", "removed datasets"}, tbl.Columns())
	assert.Equal(t, "d02;d05", tbl.Rows[0][4])

	counts := RemovalCounts(removals)
	assert.Equal(t, []DatasetCount{{"d02", 1}, {"d05", 1}}, counts)

	_, err = m.Analyze([]string{"missing"}, DefaultAlpha)
	assert.Error(t, err)
}

func TestReadMatrix_TwoLevelHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nestedcv_summarized.csv")
	body := strings.Join([]string{
		"classifier,ednel,ednel,j48,j48",
		"statistic,mean,std,mean,std",
		"iris,0.9,0.01,0.8,0.02",
		"wine,0.95,0.01,,",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	m, err := ReadMatrix(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ednel", "j48"}, m.Algorithms)
	assert.Equal(t, []string{"iris", "wine"}, m.Datasets)
	assert.Equal(t, 0.8, m.Values[0][1])
	assert.True(t, math.IsNaN(m.Values[1][1]))
}

func TestReadMatrix_SingleHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta_dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(",ednel,random_forest\niris,0.9,0.85\n"), 0o644))

	m, err := ReadMatrix(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ednel", "random_forest"}, m.Algorithms)
	assert.Equal(t, [][]float64{{0.9, 0.85}}, m.Values)
}
