package cpt

import (
	"fmt"
	"strings"
)

// MalformedRowError reports a CPT row that cannot be split into name=value fields
type MalformedRowError struct {
	Line   string
	Field  string
	Reason string
}

func (e *MalformedRowError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "field has no name=value separator"
	}
	return fmt.Sprintf("malformed CPT row %q: %s (field %q)", e.Line, reason, e.Field)
}

// InconsistentSchemaError reports a row whose parent names differ from the rest of its table
type InconsistentSchemaError struct {
	Variable string
	Expected []string
	Got      []string
	Line     string
}

func (e *InconsistentSchemaError) Error() string {
	return fmt.Sprintf(
		"inconsistent CPT schema for variable %q: row %q has parents [%s], expected [%s]",
		e.Variable, e.Line, strings.Join(e.Got, ", "), strings.Join(e.Expected, ", "),
	)
}
