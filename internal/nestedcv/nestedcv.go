// Package nestedcv compiles the prediction files of nested cross-validation runs
// into one table of per-classifier scores.
package nestedcv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ednelkit/adapters/java"
	"ednelkit/adapters/tables"
	"ednelkit/internal"
	"ednelkit/ports"
)

const (
	// CompiledFile is written by the prediction compiler into each overall directory
	CompiledFile = "summary_1.csv"
	// OutputFile is written into the experiment path
	OutputFile = "nestedcv_summarized.csv"

	predsExt = ".preds"
)

// Options configures the compiler invocation
type Options struct {
	JavaBin       string
	Jar           string
	HeapSize      string
	ExpectedFolds int
	Metric        string
}

// Skipped records a dataset left out of the table
type Skipped struct {
	Experiment string
	Dataset    string
	Reason     string
}

// Score is one classifier's (mean, std) on a dataset
type Score struct {
	Mean float64
	Std  float64
}

// Result holds the compiled scores, datasets and classifiers in first-seen order
type Result struct {
	Datasets    []string
	Classifiers []string
	Scores      map[string]map[string]Score // dataset -> classifier -> score
	Skipped     []Skipped
}

// Compiler runs the prediction compiler over every dataset of an experiment tree
type Compiler struct {
	runner ports.CommandRunner
	logger *internal.Logger
	opts   Options
}

// NewCompiler creates a compiler that shells out through runner
func NewCompiler(runner ports.CommandRunner, logger *internal.Logger, opts Options) *Compiler {
	if opts.JavaBin == "" {
		opts.JavaBin = "java"
	}
	if opts.ExpectedFolds <= 0 {
		opts.ExpectedFolds = 10
	}
	if opts.Metric == "" {
		opts.Metric = "unweightedAreaUnderRoc"
	}
	return &Compiler{runner: runner, logger: logger, opts: opts}
}

// Run walks experimentPath/{experiment}/{dataset}/overall, compiles each complete
// prediction set and writes nestedcv_summarized.csv into experimentPath.
func (c *Compiler) Run(ctx context.Context, experimentPath string) (*Result, error) {
	experiments, err := dirs(experimentPath)
	if err != nil {
		return nil, err
	}

	res := &Result{Scores: map[string]map[string]Score{}}
	for _, exp := range experiments {
		datasets, err := dirs(filepath.Join(experimentPath, exp))
		if err != nil {
			return nil, err
		}
		for _, ds := range datasets {
			overall := filepath.Join(experimentPath, exp, ds, "overall")
			scores, reason, err := c.compileDataset(ctx, overall)
			if err != nil {
				return nil, err
			}
			if reason != "" {
				c.logger.Warn("skipping dataset %s of experiment %s: %s", ds, exp, reason)
				res.Skipped = append(res.Skipped, Skipped{Experiment: exp, Dataset: ds, Reason: reason})
				continue
			}
			res.add(ds, scores)
		}
	}

	if err := tables.WriteCSV(filepath.Join(experimentPath, OutputFile), res.Table()); err != nil {
		return nil, err
	}
	c.logger.Info("compiled %d dataset(s), skipped %d", len(res.Datasets), len(res.Skipped))
	return res, nil
}

type classifierScore struct {
	classifier string
	score      Score
}

// compileDataset returns a non-empty reason when the dataset is skipped.
// Only a cancelled context is an error.
func (c *Compiler) compileDataset(ctx context.Context, overall string) ([]classifierScore, string, error) {
	entries, err := os.ReadDir(overall)
	if err != nil {
		return nil, "no overall directory", nil
	}
	preds := 0
	for _, e := range entries {
		if !e.IsDir() && strings.Contains(e.Name(), predsExt) {
			preds++
		}
	}

	compiled := filepath.Join(overall, CompiledFile)
	if preds == 0 || preds%c.opts.ExpectedFolds != 0 {
		if err := os.Remove(compiled); err == nil {
			c.logger.Debug("removed stale %s", compiled)
		}
		return nil, fmt.Sprintf("%d prediction files, expected a multiple of %d", preds, c.opts.ExpectedFolds), nil
	}

	cmd := java.CompilePredictions(c.opts.JavaBin, c.opts.Jar, c.opts.HeapSize, overall)
	out, err := c.runner.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, fmt.Sprintf("prediction compiler did not run: %v", err), nil
	}
	if out.ExitCode != 0 {
		return nil, fmt.Sprintf("prediction compiler exited with code %d", out.ExitCode), nil
	}

	scores, err := c.readCompiled(compiled)
	if err != nil {
		return nil, fmt.Sprintf("unreadable %s: %v", CompiledFile, err), nil
	}
	return scores, "", nil
}

// readCompiled takes (metric, mean) and (metric, std) of every non-sample row
func (c *Compiler) readCompiled(path string) ([]classifierScore, error) {
	t, err := tables.ReadCSV(path, 2)
	if err != nil {
		return nil, err
	}
	meanCol := t.ColumnIndex(c.opts.Metric, "mean")
	stdCol := t.ColumnIndex(c.opts.Metric, "std")
	if meanCol < 0 {
		return nil, fmt.Errorf("no (%s, mean) column", c.opts.Metric)
	}

	var out []classifierScore
	for i, row := range t.Rows {
		if len(row) == 0 || row[0] == "" || strings.Contains(row[0], "sample") {
			continue
		}
		mean, err := tables.ParseFloat(t.Cell(i, meanCol))
		if err != nil {
			return nil, fmt.Errorf("classifier %s: %w", row[0], err)
		}
		std, _ := tables.ParseFloat(t.Cell(i, stdCol))
		out = append(out, classifierScore{classifier: row[0], score: Score{Mean: mean, Std: std}})
	}
	return out, nil
}

func (r *Result) add(dataset string, scores []classifierScore) {
	if _, ok := r.Scores[dataset]; !ok {
		r.Datasets = append(r.Datasets, dataset)
		r.Scores[dataset] = map[string]Score{}
	}
	for _, s := range scores {
		if !contains(r.Classifiers, s.classifier) {
			r.Classifiers = append(r.Classifiers, s.classifier)
		}
		r.Scores[dataset][s.classifier] = s.score
	}
}

// Table lays the result out as datasets by (classifier, statistic), with empty
// cells for classifiers a dataset lacks
func (r *Result) Table() *tables.Table {
	top := []string{"classifier"}
	bottom := []string{"statistic"}
	for _, clf := range r.Classifiers {
		top = append(top, clf, clf)
		bottom = append(bottom, "mean", "std")
	}
	t := tables.NewMultiLevel(top, bottom)

	for _, ds := range r.Datasets {
		cells := []string{ds}
		for _, clf := range r.Classifiers {
			if s, ok := r.Scores[ds][clf]; ok {
				cells = append(cells, tables.FormatFloat(s.Mean), tables.FormatFloat(s.Std))
			} else {
				cells = append(cells, "", "")
			}
		}
		t.AddRow(cells...)
	}
	return t
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func dirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
