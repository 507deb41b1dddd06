package network

import (
	"math"
	"testing"

	"ednelkit/domain/cpt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, variable string, rows ...string) *cpt.Table {
	t.Helper()
	raw := make([]cpt.RowProbability, len(rows))
	for i, r := range rows {
		raw[i] = cpt.RowProbability{Row: r, Probability: 1.0 / float64(len(rows))}
	}
	table, err := cpt.DecodeTable(variable, raw)
	require.NoError(t, err)
	return table
}

func TestBuild_EdgesPointToParents(t *testing.T) {
	tables := []*cpt.Table{
		mustTable(t, "J48_pruning", "J48_pruning=true", "J48_pruning=false"),
		mustTable(t, "J48_confidence", "J48_pruning=true,J48_confidence=0.25", "J48_pruning=false,J48_confidence=0.5"),
	}

	s := Build("000", tables)

	assert.Equal(t, "000", s.Generation)
	assert.Equal(t, []string{"J48_pruning", "J48_confidence"}, s.Nodes())
	assert.True(t, s.HasEdge("J48_confidence", "J48_pruning"))
	assert.False(t, s.HasEdge("J48_pruning", "J48_confidence"))
	assert.Equal(t, []string{"J48_pruning"}, s.Parents("J48_confidence"))
}

func TestBuild_NeverCreatesSelfEdge(t *testing.T) {
	table := mustTable(t, "A", "A=0,B=1", "A=1,B=1")
	s := Build("001", []*cpt.Table{table})

	assert.False(t, s.HasEdge("A", "A"))
	assert.True(t, s.HasEdge("A", "B"))

	// the self column is kept in the table
	stored, ok := s.Table("A")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, stored.Columns)

	for _, e := range s.Edges() {
		assert.NotEqual(t, e.From, e.To)
	}
}

func TestBuild_UnknownParentBecomesNode(t *testing.T) {
	s := Build("002", []*cpt.Table{mustTable(t, "A", "A=0,Z=1")})

	assert.Contains(t, s.Nodes(), "Z")
	assert.Equal(t, []string{"A"}, s.Variables())
	_, ok := s.Table("Z")
	assert.False(t, ok)
}

func TestBuildWithBase_EdgeKinds(t *testing.T) {
	base := &Deterministic{
		Variables: []string{"A", "B", "C"},
		Parents:   map[string][]string{"B": {"A"}, "C": {"A"}},
	}
	tables := []*cpt.Table{
		mustTable(t, "A", "A=0"),
		mustTable(t, "B", "A=0,B=0"),
		mustTable(t, "C", "C=0"),
	}

	s := BuildWithBase("003", tables, base)

	kinds := map[[2]string]EdgeKind{}
	for _, e := range s.Edges() {
		kinds[[2]string{e.From, e.To}] = e.Kind
	}
	assert.Equal(t, Probabilistic, kinds[[2]string{"B", "A"}])
	assert.Equal(t, DeterministicEdge, kinds[[2]string{"C", "A"}])
	assert.Len(t, kinds, 2)
}

func TestBuildAll_PropagatesCodecErrors(t *testing.T) {
	raw := []RawGeneration{{
		ID: "000",
		Variables: []RawVariable{{
			Name: "A",
			Rows: []cpt.RowProbability{{Row: "A=0", Probability: 1}, {Row: "oops", Probability: 0}},
		}},
	}}

	_, err := BuildAll(raw, nil)
	var malformed *cpt.MalformedRowError
	assert.ErrorAs(t, err, &malformed)
}

func TestLayout_CoversEveryNode(t *testing.T) {
	s := Build("000", []*cpt.Table{
		mustTable(t, "A", "A=0,B=0"),
		mustTable(t, "B", "B=0,C=0"),
		mustTable(t, "C", "C=0"),
	})

	positions := Layout(s)
	require.Len(t, positions, 3)
	for name, p := range positions {
		assert.False(t, math.IsNaN(p.X), name)
		assert.False(t, math.IsNaN(p.Y), name)
	}
}

func TestMarshalDOT(t *testing.T) {
	s := Build("004", []*cpt.Table{
		mustTable(t, "A", "A=0,B=0"),
		mustTable(t, "B", "B=0"),
	})

	out, err := MarshalDOT(s)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "generation_004")
	assert.Contains(t, text, "A")
	assert.Contains(t, text, "grey")
}

func TestFamilyColors(t *testing.T) {
	colors := FamilyColors([]string{"J48_pruning", "J48_confidence", "SimpleCart_minNumObj", "classifier"})

	assert.Equal(t, colors["J48_pruning"], colors["J48_confidence"])
	assert.NotEqual(t, colors["J48_pruning"], colors["SimpleCart_minNumObj"])
	assert.Equal(t, "#fbb4ae", colors["J48_pruning"])
	assert.Equal(t, "#f2f2f2", colors["classifier"])
}

func TestGenerationIDs(t *testing.T) {
	assert.Equal(t, "007", FormatGeneration(7))
	assert.Equal(t, "123", FormatGeneration(123))

	gen, err := ParseGeneration("042")
	require.NoError(t, err)
	assert.Equal(t, 42, gen)

	_, err = ParseGeneration("abc")
	assert.Error(t, err)
}
