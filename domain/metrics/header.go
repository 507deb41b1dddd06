package metrics

import "fmt"

// HeaderConvention identifies which metric names a fold file uses
type HeaderConvention int

const (
	// ReadableHeader files use the Python wrapper's snake_case names
	ReadableHeader HeaderConvention = iota
	// RawHeader files use the Java toolkit's names
	RawHeader
)

func (c HeaderConvention) String() string {
	if c == RawHeader {
		return "raw"
	}
	return "readable"
}

// DetectConvention inspects a header once and picks the convention that
// matches more registry metrics. Metrics whose two names coincide count for both.
func (r *Registry) DetectConvention(header []string) (HeaderConvention, error) {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	readable, raw := 0, 0
	for _, m := range r.metrics {
		if _, ok := present[m.Name]; ok {
			readable++
		}
		if _, ok := present[m.RawName]; ok {
			raw++
		}
	}

	switch {
	case readable == 0 && raw == 0:
		return ReadableHeader, fmt.Errorf("header matches no known metric names")
	case raw > readable:
		return RawHeader, nil
	default:
		return ReadableHeader, nil
	}
}
