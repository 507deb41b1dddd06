package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"ednelkit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:    "ERROR",
		Java:        config.JavaConfig{Bin: "java", Jar: "ednel.jar", HeapSize: "2G"},
		Postprocess: config.PostprocessConfig{Metric: "unweighted_area_under_roc"},
		NestedCV:    config.NestedCVConfig{ExpectedFolds: 10, Metric: "unweightedAreaUnderRoc"},
		Dashboard:   config.DashboardConfig{Port: "8050"},
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(testConfig())
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSweep_PrintConfig(t *testing.T) {
	out, err := run(t, "sweep", "--print-config")
	require.NoError(t, err)
	assert.Contains(t, out, "n_individuals:")
	assert.Contains(t, out, "a_sets_experiments")
}

func TestSweep_WritesScripts(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "sweep", "--out-dir", dir, "--seed", "3")
	require.NoError(t, err)

	for _, name := range []string{"a_sets_experiments.sh", "b_sets_experiments.sh"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotContains(t, string(b), "<n_generations>", name)
	}
}

func TestNetwork_WritesDOT(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "gm.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "000": {"A": {"A=1,B=0": 0.5, "A=0,B=0": 0.5}, "B": {"B=0": 1}}
}`), 0644))

	out, err := run(t, "network", "--json-path", jsonPath, "--generation", "0", "--dot-out", filepath.Join(dir, "dot"))
	require.NoError(t, err)
	assert.Contains(t, out, "probabilistic")

	_, err = os.Stat(filepath.Join(dir, "dot", "generation_000.dot"))
	assert.NoError(t, err)

	_, err = run(t, "network", "--json-path", jsonPath, "--generation", "5")
	assert.Error(t, err)
}

func TestRequiredFlags(t *testing.T) {
	_, err := run(t, "postprocess")
	assert.Error(t, err)

	_, err = run(t, "postprocess", "--experiment-path", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = run(t, "compare", "--csv-path", "x.csv")
	assert.Error(t, err)
}

func TestInterpretParams_ReadsExperimentTree(t *testing.T) {
	out, err := run(t, "interpret-params", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "{experiment-path}/{experiment}/{dataset}/")

	root := t.TempDir()
	for i, parents := range []string{"1", "2"} {
		dir := filepath.Join(root, "nested", "iris")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		name := filepath.Join(dir, "fold"+strconv.Itoa(i)+"_parameters.json")
		require.NoError(t, os.WriteFile(name, []byte(`{"max_parents": `+parents+`}`), 0o644))
	}

	_, err = run(t, "interpret-params", "--experiment-path", root)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "ultra_parameters.csv"))
}
