// Package report renders result tables for people: aligned terminal output,
// markdown and HTML.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"ednelkit/adapters/tables"

	"github.com/fatih/color"
)

// Printer writes tables as aligned text with a coloured header.
// Colour follows color.NoColor, which is set when NO_COLOR is present or
// the output is not a terminal.
type Printer struct {
	out    io.Writer
	header *color.Color
	label  *color.Color
	faint  *color.Color
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		out:    w,
		header: color.New(color.FgCyan, color.Bold),
		label:  color.New(color.FgGreen),
		faint:  color.New(color.Faint),
	}
}

// WithColor forces colour on or off regardless of the environment
func (p *Printer) WithColor(enabled bool) *Printer {
	for _, c := range []*color.Color{p.header, p.label, p.faint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Table prints every header row followed by the body. The first column is
// highlighted as the row label; empty cells print as "-".
func (p *Printer) Table(t *tables.Table) error {
	width := t.Width()
	if width == 0 {
		return nil
	}

	widths := make([]int, width)
	measure := func(row []string) {
		for i := 0; i < width; i++ {
			if n := utf8.RuneCountInString(display(cell(row, i))); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for _, h := range t.Headers {
		measure(h)
	}
	for _, r := range t.Rows {
		measure(r)
	}

	for _, h := range t.Headers {
		if err := p.line(h, widths, func(int, string) *color.Color { return p.header }); err != nil {
			return err
		}
	}

	rule := make([]string, width)
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	if _, err := fmt.Fprintln(p.out, p.faint.Sprint(strings.Join(rule, "  "))); err != nil {
		return err
	}

	for _, r := range t.Rows {
		err := p.line(r, widths, func(i int, text string) *color.Color {
			switch {
			case i == 0:
				return p.label
			case text == "":
				return p.faint
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) line(row []string, widths []int, style func(int, string) *color.Color) error {
	var b strings.Builder
	for i, w := range widths {
		raw := cell(row, i)
		text := display(raw)
		pad := strings.Repeat(" ", w-utf8.RuneCountInString(text))
		if c := style(i, raw); c != nil {
			text = c.Sprint(text)
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(text)
		if i < len(widths)-1 {
			b.WriteString(pad)
		}
	}
	_, err := fmt.Fprintln(p.out, b.String())
	return err
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func display(text string) string {
	if text == "" {
		return "-"
	}
	return text
}
