// Package cpt decodes the textual conditional probability tables that EDNEL
// dumps for every generation of its dependency network.
//
// A row looks like
//
//	name1=value1,name2=value2,...,nameK=valueK
//
// where a value may itself be a parenthesised expression such as
// J48(confidence=0.25,minNumObj=2). Commas and equals signs that sit inside
// such an expression are part of the value, not separators.
package cpt

import "strings"

// Assignment is one name=value field of a CPT row
type Assignment struct {
	Name  string
	Value string
}

// DecodeRow splits a CPT row into its ordered name/value assignments.
func DecodeRow(line string) ([]Assignment, error) {
	enclosed := enclosedPositions(line)

	fields := splitUnenclosed(line, ',', enclosed)
	assignments := make([]Assignment, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))

	for _, f := range fields {
		eq := -1
		for i := f.start; i < f.end; i++ {
			if line[i] == '=' && !enclosed[i] {
				eq = i
				break
			}
		}
		field := line[f.start:f.end]
		if eq < 0 {
			return nil, &MalformedRowError{Line: line, Field: field}
		}

		name := line[f.start:eq]
		if _, dup := seen[name]; dup {
			return nil, &MalformedRowError{Line: line, Field: field, Reason: "parent assigned twice"}
		}
		seen[name] = struct{}{}

		assignments = append(assignments, Assignment{Name: name, Value: line[eq+1 : f.end]})
	}

	return assignments, nil
}

// EncodeRow joins assignments back into row text. For rows without nested
// parentheses EncodeRow(DecodeRow(s)) == s.
func EncodeRow(assignments []Assignment) string {
	var b strings.Builder
	for i, a := range assignments {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.Name)
		b.WriteByte('=')
		b.WriteString(a.Value)
	}
	return b.String()
}

type span struct{ start, end int }

func splitUnenclosed(s string, sep byte, enclosed []bool) []span {
	var spans []span
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep && !enclosed[i] {
			spans = append(spans, span{start, i})
			start = i + 1
		}
	}
	return append(spans, span{start, len(s)})
}

// enclosedPositions marks every byte whose next parenthesis to the right is a
// closing one, i.e. the negative lookahead (?![^(]*\)) fails there.
func enclosedPositions(s string) []bool {
	enclosed := make([]bool, len(s))
	closing := false
	for i := len(s) - 1; i >= 0; i-- {
		enclosed[i] = closing
		switch s[i] {
		case ')':
			closing = true
		case '(':
			closing = false
		}
	}
	return enclosed
}
