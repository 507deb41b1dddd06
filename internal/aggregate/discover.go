package aggregate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// OverallDir is the directory holding the per-fold result files of one dataset
const OverallDir = "overall"

// maxDepth bounds directory descent
const maxDepth = 16

var (
	// ErrNoOverallMarker is returned for a directory that has neither subdirectories nor an overall marker
	ErrNoOverallMarker = errors.New("no overall directory found")
	// ErrTooDeep is returned when descent goes past maxDepth levels
	ErrTooDeep = errors.New("directory tree too deep")
	// ErrNoFoldFiles is returned by InferShape when no overall directory holds a fold file
	ErrNoFoldFiles = errors.New("no fold result files found")
)

var foldFilePattern = regexp.MustCompile(`^test_sample-(\d+)_fold-(\d+)\.csv$`)

// FoldFileName is the name of the result file of one (sample, fold), both 1-based
func FoldFileName(sample, fold int) string {
	return fmt.Sprintf("test_sample-%02d_fold-%02d.csv", sample, fold)
}

func sampleLabel(sample int) string {
	return fmt.Sprintf("sample-%02d", sample)
}

// DiscoverDepth counts the directory levels between root and the directory that
// directly contains an overall subdirectory: 1 when root has one, otherwise one
// more than the deepest child. Children that fail are ignored as long as a
// sibling yields a depth.
func DiscoverDepth(root string) (int, error) {
	return discoverDepth(root, maxDepth)
}

func discoverDepth(dir string, budget int) (int, error) {
	if budget == 0 {
		return 0, fmt.Errorf("%s: %w", dir, ErrTooDeep)
	}

	dirs, err := subdirs(dir)
	if err != nil {
		return 0, err
	}
	for _, d := range dirs {
		if d == OverallDir {
			return 1, nil
		}
	}
	if len(dirs) == 0 {
		return 0, fmt.Errorf("%s: %w", dir, ErrNoOverallMarker)
	}

	best := 0
	var firstErr error
	for _, d := range dirs {
		depth, err := discoverDepth(filepath.Join(dir, d), budget-1)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		best = max(best, depth)
	}
	if best == 0 {
		return 0, firstErr
	}
	return best + 1, nil
}

// subdirs lists the subdirectory names of dir, sorted
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// parseFoldFileName extracts the sample and fold indices from a fold file name
func parseFoldFileName(name string) (sample, fold int, ok bool) {
	m := foldFilePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	sample, _ = strconv.Atoi(m[1])
	fold, _ = strconv.Atoi(m[2])
	return sample, fold, true
}

// InferShape returns the largest sample and fold indices of the fold files found
// in every overall directory under root. Directories whose maxima differ from
// the overall maxima are reported as warnings.
func (a *Aggregator) InferShape(root string) (nSamples, nFolds int, err error) {
	type shape struct{ samples, folds int }
	shapes := make(map[string]shape)
	var order []string

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() || d.Name() != OverallDir {
			return nil
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", path, err)
		}
		var s shape
		for _, e := range entries {
			if sample, fold, ok := parseFoldFileName(e.Name()); ok {
				s.samples = max(s.samples, sample)
				s.folds = max(s.folds, fold)
			}
		}
		if s.samples > 0 {
			shapes[path] = s
			order = append(order, path)
		}
		return filepath.SkipDir
	})
	if err != nil {
		return 0, 0, err
	}
	if len(order) == 0 {
		return 0, 0, fmt.Errorf("%w under %s", ErrNoFoldFiles, root)
	}

	for _, p := range order {
		nSamples = max(nSamples, shapes[p].samples)
		nFolds = max(nFolds, shapes[p].folds)
	}
	for _, p := range order {
		if s := shapes[p]; s.samples != nSamples || s.folds != nFolds {
			a.logger.Warn("%s has %d samples x %d folds, expected %d x %d", p, s.samples, s.folds, nSamples, nFolds)
		}
	}
	a.logger.Debug("inferred %d samples x %d folds from %d datasets", nSamples, nFolds, len(order))
	return nSamples, nFolds, nil
}
