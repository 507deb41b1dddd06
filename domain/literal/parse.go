package literal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse reads a Python literal made of numbers, lists, tuples and dicts.
// numpy reprs such as array([[1, 2], [3, 4]]) and nan/inf/None are accepted.
func Parse(text string) (Value, error) {
	p := &parser{src: text}
	v, err := p.value()
	if err != nil {
		return Value{}, fmt.Errorf("invalid literal %q: %w", text, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Value{}, fmt.Errorf("invalid literal %q: trailing input at offset %d", text, p.pos)
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		return fmt.Errorf("expected %q at offset %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *parser) value() (Value, error) {
	switch c := p.peek(); {
	case c == 0:
		return Value{}, fmt.Errorf("unexpected end of input")
	case c == '[':
		p.pos++
		items, err := p.sequence(']')
		return Value{kind: List, items: items}, err
	case c == '(':
		p.pos++
		items, err := p.sequence(')')
		return Value{kind: Tuple, items: items}, err
	case c == '{':
		p.pos++
		return p.dict()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		f, err := p.number()
		return Num(f), err
	case isIdentStart(c):
		return p.identifier()
	default:
		return Value{}, fmt.Errorf("unexpected %q at offset %d", c, p.pos)
	}
}

func (p *parser) sequence(close byte) ([]Value, error) {
	items := []Value{}
	for {
		if p.peek() == close {
			p.pos++
			return items, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		switch p.peek() {
		case ',':
			p.pos++
		case close:
			p.pos++
			return items, nil
		default:
			return nil, fmt.Errorf("expected ',' or %q at offset %d", close, p.pos)
		}
	}
}

func (p *parser) dict() (Value, error) {
	d := Value{kind: Dict}
	for {
		if p.peek() == '}' {
			p.pos++
			return d, nil
		}

		var e entry
		switch c := p.peek(); {
		case c == '\'' || c == '"':
			key, err := p.str()
			if err != nil {
				return Value{}, err
			}
			e.key, e.quoted = key, true
		default:
			start := p.pos
			if _, err := p.number(); err != nil {
				return Value{}, fmt.Errorf("dict key: %w", err)
			}
			e.key = strings.TrimSpace(p.src[start:p.pos])
		}

		if err := p.expect(':'); err != nil {
			return Value{}, err
		}
		v, err := p.value()
		if err != nil {
			return Value{}, err
		}
		e.value = v
		d.entries = append(d.entries, e)

		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return d, nil
		default:
			return Value{}, fmt.Errorf("expected ',' or '}' at offset %d", p.pos)
		}
	}
}

func (p *parser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == quote:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *parser) number() (float64, error) {
	p.skipSpace()
	start := p.pos
	if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
		p.pos++
	}
	if p.pos < len(p.src) && isIdentStart(p.src[p.pos]) {
		word := p.word()
		f, ok := special(word)
		if !ok {
			return 0, fmt.Errorf("invalid number %q", p.src[start:p.pos])
		}
		if p.src[start] == '-' {
			f = -f
		}
		return f, nil
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' ||
			((c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E')) {
			p.pos++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.src[start:p.pos])
	}
	return f, nil
}

func (p *parser) identifier() (Value, error) {
	start := p.pos
	word := p.word()
	if f, ok := special(word); ok {
		return Num(f), nil
	}
	if word != "array" {
		return Value{}, fmt.Errorf("unknown identifier %q at offset %d", word, start)
	}

	if err := p.expect('('); err != nil {
		return Value{}, err
	}
	inner, err := p.value()
	if err != nil {
		return Value{}, err
	}
	// optional dtype=... keyword
	if p.peek() == ',' {
		p.pos++
		p.skipSpace()
		if kw := p.word(); kw != "dtype" {
			return Value{}, fmt.Errorf("unexpected keyword %q in array()", kw)
		}
		if err := p.expect('='); err != nil {
			return Value{}, err
		}
		p.skipSpace()
		p.word()
	}
	if err := p.expect(')'); err != nil {
		return Value{}, err
	}
	if inner.kind == Tuple {
		inner.kind = List
	}
	return inner, nil
}

func (p *parser) word() string {
	start := p.pos
	for p.pos < len(p.src) && (isIdentStart(p.src[p.pos]) || (p.src[p.pos] >= '0' && p.src[p.pos] <= '9') || p.src[p.pos] == '.') {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func special(word string) (float64, bool) {
	switch strings.ToLower(word) {
	case "nan", "none":
		return math.NaN(), true
	case "inf", "infinity":
		return math.Inf(1), true
	}
	return 0, false
}
