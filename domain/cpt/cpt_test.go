package cpt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRow_SimpleRoundTrip(t *testing.T) {
	lines := []string{
		"a=1",
		"a=1,b=2",
		"J48_pruning=unpruned,J48_confidenceFactor=0.25,classifier=true",
		"x=,y=",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			decoded, err := DecodeRow(line)
			require.NoError(t, err)
			assert.Equal(t, line, EncodeRow(decoded))
		})
	}
}

func TestDecodeRow_NestedParentheses(t *testing.T) {
	decoded, err := DecodeRow("a=Foo(1,2),b=3")
	require.NoError(t, err)

	assert.Equal(t, []Assignment{
		{Name: "a", Value: "Foo(1,2)"},
		{Name: "b", Value: "3"},
	}, decoded)
}

func TestDecodeRow_NestedEqualsStayInValue(t *testing.T) {
	decoded, err := DecodeRow("clf=J48(confidence=0.25,minNumObj=2),aggregator=MajorityVoting")
	require.NoError(t, err)

	require.Len(t, decoded, 2)
	assert.Equal(t, "clf", decoded[0].Name)
	assert.Equal(t, "J48(confidence=0.25,minNumObj=2)", decoded[0].Value)
	assert.Equal(t, "aggregator", decoded[1].Name)
	assert.Equal(t, "MajorityVoting", decoded[1].Value)
}

func TestDecodeRow_SplitsOnFirstEquals(t *testing.T) {
	decoded, err := DecodeRow("a=b=c")
	require.NoError(t, err)
	assert.Equal(t, []Assignment{{Name: "a", Value: "b=c"}}, decoded)
}

func TestDecodeRow_Malformed(t *testing.T) {
	_, err := DecodeRow("a=1,broken,c=3")
	require.Error(t, err)

	var malformed *MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "broken", malformed.Field)
	assert.Equal(t, "a=1,broken,c=3", malformed.Line)
	assert.Contains(t, err.Error(), "broken")
}

func TestDecodeRow_EqualsOnlyInsideParentheses(t *testing.T) {
	_, err := DecodeRow("Foo(a=1)")

	var malformed *MalformedRowError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Foo(a=1)", malformed.Field)
}

func TestDecodeRow_DuplicateParent(t *testing.T) {
	_, err := DecodeRow("a=1,a=2")

	var malformed *MalformedRowError
	require.ErrorAs(t, err, &malformed)
}

func TestDecodeTable(t *testing.T) {
	table, err := DecodeTable("B", []RowProbability{
		{Row: "A=x,B=0", Probability: 0.2},
		{Row: "B=1,A=x", Probability: 0.8},
		{Row: "A=y,B=0", Probability: 0.5},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, table.Columns)
	assert.Equal(t, []string{"A", "B", ProbabilityColumn}, table.Header())
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"x", "1"}, table.Rows[1].Values)
	assert.Equal(t, 0.8, table.Rows[1].Probability)

	// self reference is retained as a column but is not a parent
	assert.Equal(t, []string{"A"}, table.Parents())
}

func TestDecodeTable_InconsistentSchema(t *testing.T) {
	_, err := DecodeTable("B", []RowProbability{
		{Row: "A=x,B=0", Probability: 0.5},
		{Row: "C=x,B=0", Probability: 0.5},
	})

	var inconsistent *InconsistentSchemaError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, "B", inconsistent.Variable)
	assert.Equal(t, []string{"A", "B"}, inconsistent.Expected)
	assert.Equal(t, []string{"C", "B"}, inconsistent.Got)
}

func TestDecodeTable_ExtraParent(t *testing.T) {
	_, err := DecodeTable("B", []RowProbability{
		{Row: "B=0", Probability: 0.5},
		{Row: "A=x,B=0", Probability: 0.5},
	})

	var inconsistent *InconsistentSchemaError
	assert.ErrorAs(t, err, &inconsistent)
}

func TestDecodeTable_NoNormalisationCheck(t *testing.T) {
	table, err := DecodeTable("A", []RowProbability{
		{Row: "A=0", Probability: 0.7},
		{Row: "A=1", Probability: 0.7},
	})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestTable_SortedAndEntries(t *testing.T) {
	table, err := DecodeTable("B", []RowProbability{
		{Row: "A=y,B=1", Probability: 0.1},
		{Row: "A=x,B=1", Probability: 0.2},
		{Row: "A=x,B=0", Probability: 0.3},
	})
	require.NoError(t, err)

	sorted := table.Sorted()
	assert.Equal(t, []string{"x", "0"}, sorted.Rows[0].Values)
	assert.Equal(t, []string{"x", "1"}, sorted.Rows[1].Values)
	assert.Equal(t, []string{"y", "1"}, sorted.Rows[2].Values)
	// original untouched
	assert.Equal(t, []string{"y", "1"}, table.Rows[0].Values)

	entries := table.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "B", entries[0].Variable)
	assert.Equal(t, "A=y,B=1", EncodeRow(entries[0].Assignment))
}
