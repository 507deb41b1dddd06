// Package population projects the characteristics of an EDNEL population onto
// its first two principal components.
package population

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"ednelkit/adapters/tables"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	fitnessColumn = "fitness"
	// dropped before projection: it is only known after evaluation on held-out data
	testAUCColumn = "test_auc"
)

// Characteristics is one encoded row per individual
type Characteristics struct {
	Names    []string
	Labels   []string // generation label of each individual
	Columns  []string
	Fitness  []float64
	Features *mat.Dense
}

// Point is one projected individual
type Point struct {
	Label   string
	X, Y    float64
	Fitness float64
}

// Label extracts the generation token of an individual name such as
// "ind_003_12": the second "_"-separated field, or the whole name
func Label(name string) string {
	parts := strings.SplitN(name, "_", 3)
	if len(parts) < 2 {
		return name
	}
	return parts[1]
}

// Encode turns a characteristics table into a numeric matrix. Numeric columns
// keep their values with -1 for empty cells; other columns are one-hot encoded.
func Encode(t *tables.Table) (*Characteristics, error) {
	header := t.Columns()
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("characteristics table has no rows")
	}

	c := &Characteristics{}
	for _, row := range t.Rows {
		c.Names = append(c.Names, row[0])
		c.Labels = append(c.Labels, Label(row[0]))
	}

	var columns [][]float64
	for col := 1; col < len(header); col++ {
		name := header[col]
		if name == testAUCColumn {
			continue
		}
		cells := make([]string, len(t.Rows))
		for i := range t.Rows {
			cells[i] = t.Cell(i, col)
		}

		if values, ok := numeric(cells); ok {
			if name == fitnessColumn {
				c.Fitness = values
			}
			c.Columns = append(c.Columns, name)
			columns = append(columns, values)
			continue
		}
		for _, cat := range categories(cells) {
			c.Columns = append(c.Columns, name+"_"+cat)
			columns = append(columns, oneHot(cells, cat))
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("characteristics table has no feature columns")
	}
	if c.Fitness == nil {
		c.Fitness = make([]float64, len(t.Rows))
		for i := range c.Fitness {
			c.Fitness[i] = math.NaN()
		}
	}

	c.Features = mat.NewDense(len(t.Rows), len(columns), nil)
	for j, values := range columns {
		c.Features.SetCol(j, values)
	}
	return c, nil
}

func numeric(cells []string) ([]float64, bool) {
	values := make([]float64, len(cells))
	for i, s := range cells {
		if strings.TrimSpace(s) == "" {
			values[i] = -1
			continue
		}
		v, err := tables.ParseFloat(s)
		if err != nil || math.IsNaN(v) {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func categories(cells []string) []string {
	seen := map[string]bool{}
	for _, s := range cells {
		seen[category(s)] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func category(s string) string {
	if strings.TrimSpace(s) == "" {
		return "null"
	}
	return s
}

func oneHot(cells []string, cat string) []float64 {
	values := make([]float64, len(cells))
	for i, s := range cells {
		if category(s) == cat {
			values[i] = 1
		}
	}
	return values
}

// Project centres the features and projects them on the first two principal
// components. A single-component result leaves Y at zero.
func Project(c *Characteristics) ([]Point, error) {
	n, d := c.Features.Dims()
	if n < 2 {
		return nil, fmt.Errorf("need at least two individuals, got %d", n)
	}

	centered := mat.DenseCopyOf(c.Features)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, centered)
		mean := stat.Mean(col, nil)
		for i := range col {
			col[i] -= mean
		}
		centered.SetCol(j, col)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(centered, nil); !ok {
		return nil, fmt.Errorf("principal component analysis failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, k := vecs.Dims()
	k = min(k, 2)

	var proj mat.Dense
	proj.Mul(centered, vecs.Slice(0, d, 0, k))

	points := make([]Point, n)
	for i := range points {
		points[i] = Point{Label: c.Labels[i], X: proj.At(i, 0), Fitness: c.Fitness[i]}
		if k > 1 {
			points[i].Y = proj.At(i, 1)
		}
	}
	return points, nil
}

// Table lays projected points out as label,x,y,fitness
func Table(points []Point) *tables.Table {
	t := tables.New("label", "x", "y", "fitness")
	for _, p := range points {
		t.AddRow(p.Label, tables.FormatFloat(p.X), tables.FormatFloat(p.Y), tables.FormatFloat(p.Fitness))
	}
	return t
}
