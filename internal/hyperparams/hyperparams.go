// Package hyperparams tabulates which hyperparameter values the nested
// cross-validation folds of each dataset selected.
package hyperparams

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ednelkit/adapters/tables"
	apperrors "ednelkit/internal/errors"

	"github.com/tidwall/gjson"
)

// OutputFile is written into the experiment path
const OutputFile = "ultra_parameters.csv"

// Record is the hyperparameter choice of one fold: name to value text
type Record map[string]string

// Table counts, per dataset, how many folds chose each (hyperparameter, value)
type Table struct {
	Datasets []string
	Columns  []string // <hyperparameter>_<value>, sorted
	Counts   [][]int  // Counts[dataset][column]
}

// Extract keeps the hyperparameters that took more than one distinct value over
// all folds of all datasets, skipping any whose name mentions "dataset"
func Extract(records map[string][]Record) *Table {
	values := map[string]map[string]bool{}
	for _, recs := range records {
		for _, r := range recs {
			for name, v := range r {
				if values[name] == nil {
					values[name] = map[string]bool{}
				}
				values[name][v] = true
			}
		}
	}

	colSet := map[string]bool{}
	retained := map[string]bool{}
	for name, set := range values {
		if len(set) <= 1 || strings.Contains(strings.ToLower(name), "dataset") {
			continue
		}
		retained[name] = true
		for v := range set {
			colSet[column(name, v)] = true
		}
	}

	t := &Table{Datasets: sortedKeys(records), Columns: sortedKeys(colSet)}
	index := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		index[c] = i
	}

	for _, ds := range t.Datasets {
		counts := make([]int, len(t.Columns))
		for _, r := range records[ds] {
			for name, v := range r {
				if retained[name] {
					counts[index[column(name, v)]]++
				}
			}
		}
		t.Counts = append(t.Counts, counts)
	}
	return t
}

func column(name, value string) string {
	return name + "_" + value
}

// Count returns the count of a column for a dataset
func (t *Table) Count(dataset, column string) int {
	for i, ds := range t.Datasets {
		if ds != dataset {
			continue
		}
		for j, c := range t.Columns {
			if c == column {
				return t.Counts[i][j]
			}
		}
	}
	return 0
}

// Table lays the counts out with datasets as rows
func (t *Table) Table() *tables.Table {
	out := tables.New(append([]string{"dataset"}, t.Columns...)...)
	for i, ds := range t.Datasets {
		cells := []string{ds}
		for _, c := range t.Counts[i] {
			cells = append(cells, strconv.Itoa(c))
		}
		out.AddRow(cells...)
	}
	return out
}

// Write saves the table as ultra_parameters.csv inside dir
func (t *Table) Write(dir string) error {
	return tables.WriteCSV(filepath.Join(dir, OutputFile), t.Table())
}

// Load reads experimentPath/{experiment}/{dataset}/*parameters.json, one record per file.
// Records are grouped by dataset name. Malformed JSON is an error.
func Load(experimentPath string) (map[string][]Record, error) {
	experiments, err := dirs(experimentPath)
	if err != nil {
		return nil, err
	}

	records := map[string][]Record{}
	for _, exp := range experiments {
		datasets, err := dirs(filepath.Join(experimentPath, exp))
		if err != nil {
			return nil, err
		}
		for _, ds := range datasets {
			files, err := filepath.Glob(filepath.Join(experimentPath, exp, ds, "*parameters.json"))
			if err != nil {
				return nil, err
			}
			sort.Strings(files)
			for _, f := range files {
				r, err := readRecord(f)
				if err != nil {
					return nil, err
				}
				records[ds] = append(records[ds], r)
			}
		}
	}
	return records, nil
}

func readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, apperrors.MalformedInput(fmt.Sprintf("%s is not valid JSON", path), nil)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, apperrors.MalformedInput(fmt.Sprintf("%s must hold a flat object", path), nil)
	}

	r := Record{}
	root.ForEach(func(k, v gjson.Result) bool {
		r[k.String()] = v.String()
		return true
	})
	return r, nil
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

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
