package cpt

import (
	"sort"
)

// ProbabilityColumn is the name of the trailing column of every table
const ProbabilityColumn = "probability"

// RowProbability is one raw CPT entry as stored in the generations file
type RowProbability struct {
	Row         string
	Probability float64
}

// Entry is one decoded CPT row
type Entry struct {
	Variable    string
	Assignment  []Assignment
	Probability float64
}

// Row is one table line: values aligned with Table.Columns
type Row struct {
	Values      []string
	Probability float64
}

// Table is the decoded conditional probability table of one variable.
// Columns hold the parent names in first-observed order; the variable itself
// may appear among them (self reference) and is kept.
type Table struct {
	Variable string
	Columns  []string
	Rows     []Row
}

// DecodeTable decodes every row of a variable's CPT and checks that all rows
// assign the same set of parents. Probabilities are not required to sum to 1.
func DecodeTable(variable string, rows []RowProbability) (*Table, error) {
	table := &Table{Variable: variable}
	var index map[string]int

	for _, raw := range rows {
		assignments, err := DecodeRow(raw.Row)
		if err != nil {
			return nil, err
		}

		if index == nil {
			index = make(map[string]int, len(assignments))
			for i, a := range assignments {
				table.Columns = append(table.Columns, a.Name)
				index[a.Name] = i
			}
		}

		if !sameNames(index, assignments) {
			got := make([]string, len(assignments))
			for i, a := range assignments {
				got[i] = a.Name
			}
			return nil, &InconsistentSchemaError{
				Variable: variable,
				Expected: append([]string(nil), table.Columns...),
				Got:      got,
				Line:     raw.Row,
			}
		}

		values := make([]string, len(table.Columns))
		for _, a := range assignments {
			values[index[a.Name]] = a.Value
		}
		table.Rows = append(table.Rows, Row{Values: values, Probability: raw.Probability})
	}

	return table, nil
}

func sameNames(index map[string]int, assignments []Assignment) bool {
	if len(index) != len(assignments) {
		return false
	}
	for _, a := range assignments {
		if _, ok := index[a.Name]; !ok {
			return false
		}
	}
	return true
}

// Parents returns the parent names other than the variable itself
func (t *Table) Parents() []string {
	parents := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c != t.Variable {
			parents = append(parents, c)
		}
	}
	return parents
}

// Entries returns the table back as decoded entries
func (t *Table) Entries() []Entry {
	entries := make([]Entry, len(t.Rows))
	for i, r := range t.Rows {
		assignment := make([]Assignment, len(t.Columns))
		for j, c := range t.Columns {
			assignment[j] = Assignment{Name: c, Value: r.Values[j]}
		}
		entries[i] = Entry{Variable: t.Variable, Assignment: assignment, Probability: r.Probability}
	}
	return entries
}

// Header returns the column names including the probability column
func (t *Table) Header() []string {
	return append(append([]string(nil), t.Columns...), ProbabilityColumn)
}

// Sorted returns a copy whose rows are ordered by the parent columns, left to right
func (t *Table) Sorted() *Table {
	sorted := &Table{
		Variable: t.Variable,
		Columns:  append([]string(nil), t.Columns...),
		Rows:     append([]Row(nil), t.Rows...),
	}
	sort.SliceStable(sorted.Rows, func(i, j int) bool {
		a, b := sorted.Rows[i].Values, sorted.Rows[j].Values
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return sorted
}
