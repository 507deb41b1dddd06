package sweep

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Value is one sampled parameter value, already formatted
type Value struct {
	Name string
	Text string
}

// Trial is one sampled configuration
type Trial struct {
	ID     uuid.UUID
	Values []Value
}

// Sample draws cfg.NSamples trials. Identifiers come from rng too, so a fixed
// seed reproduces the whole sweep.
func Sample(cfg *Config, rng *rand.Rand) ([]Trial, error) {
	trials := make([]Trial, 0, cfg.NSamples)
	for i := 0; i < cfg.NSamples; i++ {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("failed to create trial id: %w", err)
		}
		t := Trial{ID: id}
		for _, p := range cfg.Parameters {
			t.Values = append(t.Values, Value{Name: p.Name, Text: draw(p.Range, rng)})
		}
		trials = append(trials, t)
	}
	return trials, nil
}

func draw(r Range, rng *rand.Rand) string {
	switch {
	case r.IsFixed():
		return r.Fixed
	case r.Float:
		step := (r.Max - r.Min) / float64(LinspacePoints-1)
		v := r.Min + float64(rng.Intn(LinspacePoints))*step
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		lo, hi := int64(r.Min), int64(r.Max)
		return strconv.FormatInt(lo+rng.Int63n(hi-lo), 10)
	}
}

// Fill substitutes <name> placeholders of the template for one trial and set
func Fill(template string, t Trial, set DatasetSet) string {
	cmd := template
	for _, v := range t.Values {
		cmd = strings.ReplaceAll(cmd, "<"+v.Name+">", v.Text)
	}
	cmd = strings.ReplaceAll(cmd, "<datasets_names>", strings.Join(set.Datasets, ","))
	cmd = strings.ReplaceAll(cmd, "<experiment_set>", set.ExperimentSet)
	return strings.TrimRight(cmd, "\n")
}

// Script renders the bash script of one dataset set
func Script(cfg *Config, trials []Trial, set DatasetSet) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	for i, t := range trials {
		fmt.Fprintf(&b, "# trial %d %s\n", i+1, t.ID)
		b.WriteString(Fill(cfg.Template, t, set))
		b.WriteString("\n")
	}
	return b.String()
}

// Generate samples the sweep and writes <set>.sh for every set into outDir.
// It returns the written paths.
func Generate(cfg *Config, seed int64, outDir string) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	trials, err := Sample(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	var paths []string
	for _, set := range cfg.Sets {
		path := filepath.Join(outDir, set.Name+".sh")
		if err := os.WriteFile(path, []byte(Script(cfg, trials, set)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
