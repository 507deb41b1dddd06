// Package literal parses the Python-literal text that fold result files use for
// structured metrics (confusion matrices, class priors) and does element-wise
// arithmetic on the parsed values.
package literal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind of a literal value
type Kind int

const (
	Number Kind = iota
	List
	Tuple
	Dict
)

type entry struct {
	key    string
	quoted bool
	value  Value
}

// Value is a parsed literal: a number, a list/tuple of values or a dict
type Value struct {
	kind    Kind
	num     float64
	items   []Value
	entries []entry
}

// Num builds a number value
func Num(f float64) Value { return Value{kind: Number, num: f} }

// NewList builds a list value
func NewList(items ...Value) Value { return Value{kind: List, items: items} }

// Kind returns the value kind
func (v Value) Kind() Kind { return v.kind }

// Float returns the number held by a number value
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// Items returns the elements of a list or tuple
func (v Value) Items() []Value { return v.items }

// Get returns a dict entry by key
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return Value{}, false
}

// Keys returns dict keys in insertion order
func (v Value) Keys() []string {
	keys := make([]string, len(v.entries))
	for i, e := range v.entries {
		keys[i] = e.key
	}
	return keys
}

// Add sums two values element-wise. Lists must have the same length; dicts are
// summed key by key, keys missing on one side are copied.
func Add(a, b Value) (Value, error) {
	switch {
	case a.kind == Number && b.kind == Number:
		return Num(a.num + b.num), nil

	case (a.kind == List || a.kind == Tuple) && (b.kind == List || b.kind == Tuple):
		if len(a.items) != len(b.items) {
			return Value{}, fmt.Errorf("cannot add sequences of length %d and %d", len(a.items), len(b.items))
		}
		sum := Value{kind: a.kind, items: make([]Value, len(a.items))}
		for i := range a.items {
			s, err := Add(a.items[i], b.items[i])
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			sum.items[i] = s
		}
		return sum, nil

	case a.kind == Dict && b.kind == Dict:
		sum := Value{kind: Dict, entries: make([]entry, 0, len(a.entries))}
		for _, e := range a.entries {
			if other, ok := b.Get(e.key); ok {
				s, err := Add(e.value, other)
				if err != nil {
					return Value{}, fmt.Errorf("key %q: %w", e.key, err)
				}
				e.value = s
			}
			sum.entries = append(sum.entries, e)
		}
		for _, e := range b.entries {
			if _, ok := a.Get(e.key); !ok {
				sum.entries = append(sum.entries, e)
			}
		}
		return sum, nil
	}

	return Value{}, fmt.Errorf("cannot add %s and %s", a.kind, b.kind)
}

// Scale multiplies every number in the value by f
func (v Value) Scale(f float64) Value {
	switch v.kind {
	case Number:
		return Num(v.num * f)
	case List, Tuple:
		scaled := Value{kind: v.kind, items: make([]Value, len(v.items))}
		for i, it := range v.items {
			scaled.items[i] = it.Scale(f)
		}
		return scaled
	default:
		scaled := Value{kind: Dict, entries: make([]entry, len(v.entries))}
		for i, e := range v.entries {
			e.value = e.value.Scale(f)
			scaled.entries[i] = e
		}
		return scaled
	}
}

func (k Kind) String() string {
	switch k {
	case List:
		return "list"
	case Tuple:
		return "tuple"
	case Dict:
		return "dict"
	default:
		return "number"
	}
}

// String renders the value back as Python-literal text
func (v Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.kind {
	case Number:
		b.WriteString(formatNumber(v.num))
	case List, Tuple:
		open, close := "[", "]"
		if v.kind == Tuple {
			open, close = "(", ")"
		}
		b.WriteString(open)
		for i, it := range v.items {
			if i > 0 {
				b.WriteString(", ")
			}
			it.write(b)
		}
		if v.kind == Tuple && len(v.items) == 1 {
			b.WriteString(",")
		}
		b.WriteString(close)
	case Dict:
		b.WriteString("{")
		for i, e := range v.entries {
			if i > 0 {
				b.WriteString(", ")
			}
			if e.quoted {
				b.WriteString("'" + strings.ReplaceAll(e.key, "'", `\'`) + "'")
			} else {
				b.WriteString(e.key)
			}
			b.WriteString(": ")
			e.value.write(b)
		}
		b.WriteString("}")
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
