package network

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph/encoding/dot"
)

// pastel1 is the matplotlib Pastel1 qualitative palette
var pastel1 = []string{
	"#fbb4ae", "#b3cde3", "#ccebc5", "#decbe4", "#fed9a6",
	"#ffffcc", "#e5d8bd", "#fddaec", "#f2f2f2",
}

// MarshalDOT renders the structure as a Graphviz digraph
func MarshalDOT(s *Structure) ([]byte, error) {
	name := "generation_" + s.Generation
	b, err := dot.Marshal(s.graph, name, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation %s: %w", s.Generation, err)
	}
	return b, nil
}

// Family is the prefix of a variable name up to its first underscore
func Family(variable string) string {
	if i := strings.IndexByte(variable, '_'); i >= 0 {
		return variable[:i]
	}
	return variable
}

// FamilyColors assigns one palette colour per variable family, families in
// sorted order spread evenly over the palette.
func FamilyColors(variables []string) map[string]string {
	familySet := make(map[string]struct{})
	for _, v := range variables {
		familySet[Family(v)] = struct{}{}
	}
	families := make([]string, 0, len(familySet))
	for f := range familySet {
		families = append(families, f)
	}
	sort.Strings(families)

	familyColor := make(map[string]string, len(families))
	for i, f := range families {
		idx := 0
		if len(families) > 1 {
			idx = i * (len(pastel1) - 1) / (len(families) - 1)
		}
		familyColor[f] = pastel1[idx]
	}

	colors := make(map[string]string, len(variables))
	for _, v := range variables {
		colors[v] = familyColor[Family(v)]
	}
	return colors
}

// FormatGeneration renders a generation index in its three-digit textual form
func FormatGeneration(gen int) string {
	return fmt.Sprintf("%03d", gen)
}

// ParseGeneration parses a generation id such as "007"
func ParseGeneration(id string) (int, error) {
	gen, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || gen < 0 {
		return 0, fmt.Errorf("invalid generation id %q", id)
	}
	return gen, nil
}
