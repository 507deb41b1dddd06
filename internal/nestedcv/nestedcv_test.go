package nestedcv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ednelkit/internal"
	"ednelkit/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner writes a compiled summary into the predictions directory, or fails
type fakeRunner struct {
	exitCodes map[string]int // dataset name -> exit code
	summary   string
	calls     []ports.Command
}

func (f *fakeRunner) Run(_ context.Context, cmd ports.Command) (*ports.CommandResult, error) {
	f.calls = append(f.calls, cmd)
	dir := cmd.Args[len(cmd.Args)-1]
	code := f.exitCodes[filepath.Base(filepath.Dir(dir))]
	if code == 0 {
		if err := os.WriteFile(filepath.Join(dir, CompiledFile), []byte(f.summary), 0o644); err != nil {
			return nil, err
		}
	}
	return &ports.CommandResult{ExitCode: code}, nil
}

const compiled = `,unweightedAreaUnderRoc,unweightedAreaUnderRoc,pctCorrect,pctCorrect
,mean,std,mean,std
ednel,0.91,0.02,88,1
j48,0.85,0.03,80,2
ednel-sample-01,0.90,0.01,87,1
`

func makeOverall(t *testing.T, root, exp, ds string, preds int) string {
	t.Helper()
	overall := filepath.Join(root, exp, ds, "overall")
	require.NoError(t, os.MkdirAll(overall, 0o755))
	for i := 1; i <= preds; i++ {
		name := filepath.Join(overall, fmt.Sprintf("test_sample-01_fold-%02d.preds", i))
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}
	return overall
}

func TestCompiler_Run(t *testing.T) {
	root := t.TempDir()
	makeOverall(t, root, "exp1", "iris", 10)
	short := makeOverall(t, root, "exp1", "wine", 7)
	require.NoError(t, os.WriteFile(filepath.Join(short, CompiledFile), []byte("stale"), 0o644))
	makeOverall(t, root, "exp2", "zoo", 10)

	runner := &fakeRunner{exitCodes: map[string]int{"zoo": 1}, summary: compiled}
	var logs bytes.Buffer
	c := NewCompiler(runner, internal.NewLoggerTo(internal.LogLevelDebug, &logs), Options{Jar: "ednel.jar"})

	res, err := c.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Len(t, runner.calls, 2)
	assert.Equal(t, "java", runner.calls[0].Name)
	assert.Contains(t, runner.calls[0].Args, "ednel.utils.analysis.CompilePredictions")

	assert.Equal(t, []string{"iris"}, res.Datasets)
	assert.Equal(t, []string{"ednel", "j48"}, res.Classifiers)
	assert.Equal(t, Score{Mean: 0.91, Std: 0.02}, res.Scores["iris"]["ednel"])
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "wine", res.Skipped[0].Dataset)
	assert.Equal(t, "zoo", res.Skipped[1].Dataset)
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping dataset"))

	assert.NoFileExists(t, filepath.Join(short, CompiledFile))
	assert.FileExists(t, filepath.Join(root, OutputFile))

	tbl := res.Table()
	assert.Equal(t, []string{"classifier", "ednel", "ednel", "j48", "j48"}, tbl.Headers[0])
	assert.Equal(t, []string{"iris", "0.91", "0.02", "0.85", "0.03"}, tbl.Rows[0])
}

func TestResult_TableLeavesMissingCellsEmpty(t *testing.T) {
	r := &Result{Scores: map[string]map[string]Score{}}
	r.add("iris", []classifierScore{{"ednel", Score{0.9, 0.1}}})
	r.add("wine", []classifierScore{{"j48", Score{0.8, 0.2}}})

	tbl := r.Table()
	assert.Equal(t, []string{"iris", "0.9", "0.1", "", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"wine", "", "", "0.8", "0.2"}, tbl.Rows[1])
}
