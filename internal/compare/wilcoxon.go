// Package compare tests paired algorithm scores across datasets and finds which
// datasets keep an algorithm from significantly beating a baseline.
package compare

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// MinSamples is the smallest number of non-zero differences for which the
// normal approximation is used. scipy warns below 20 but still returns a
// p-value under default warning filters; removal stops at 10 instead.
const MinSamples = 10

// ErrTooFewSamples is returned when fewer than MinSamples non-zero differences remain
var ErrTooFewSamples = errors.New("too few non-zero differences for the normal approximation")

// Test is the outcome of a two-sided Wilcoxon signed-rank test
type Test struct {
	N         int     // non-zero differences used
	Statistic float64 // min(W+, W-)
	Z         float64
	PValue    float64
}

// Wilcoxon runs the signed-rank test on paired differences. Zero differences are
// dropped, tied magnitudes get average ranks and the variance is tie-corrected.
func Wilcoxon(diffs []float64) (Test, error) {
	var d []float64
	for _, v := range diffs {
		if v != 0 && !math.IsNaN(v) {
			d = append(d, v)
		}
	}
	n := len(d)
	if n < MinSamples {
		return Test{N: n, Statistic: math.NaN(), Z: math.NaN(), PValue: math.NaN()}, ErrTooFewSamples
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return math.Abs(d[order[i]]) < math.Abs(d[order[j]]) })

	ranks := make([]float64, n)
	tieTerm := 0.0
	for i := 0; i < n; {
		j := i
		for j+1 < n && math.Abs(d[order[j+1]]) == math.Abs(d[order[i]]) {
			j++
		}
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		t := float64(j - i + 1)
		tieTerm += t*t*t - t
		i = j + 1
	}

	var plus, minus float64
	for i, v := range d {
		if v > 0 {
			plus += ranks[i]
		} else {
			minus += ranks[i]
		}
	}

	nf := float64(n)
	stat := math.Min(plus, minus)
	mean := nf * (nf + 1) / 4
	variance := nf*(nf+1)*(2*nf+1)/24 - tieTerm/48
	z := (stat - mean) / math.Sqrt(variance)

	return Test{
		N:         n,
		Statistic: stat,
		Z:         z,
		PValue:    2 * distuv.UnitNormal.CDF(-math.Abs(z)),
	}, nil
}
