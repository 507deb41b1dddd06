package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ednelkit/adapters/tables"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders a table as a GitHub-flavoured pipe table. Multi-level
// headers are collapsed into one row, levels joined with " / ".
func Markdown(title string, t *tables.Table) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}

	width := t.Width()
	if width == 0 {
		return b.String()
	}

	header := make([]string, width)
	for i := range header {
		var parts []string
		for _, level := range t.Headers {
			if c := cell(level, i); c != "" && (len(parts) == 0 || parts[len(parts)-1] != c) {
				parts = append(parts, c)
			}
		}
		header[i] = escapeCell(strings.Join(parts, " / "))
	}
	writeRow(&b, header)

	rule := make([]string, width)
	for i := range rule {
		rule[i] = "---"
	}
	writeRow(&b, rule)

	for _, r := range t.Rows {
		row := make([]string, width)
		for i := range row {
			row[i] = escapeCell(cell(r, i))
		}
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func escapeCell(text string) string {
	return strings.ReplaceAll(text, "|", `\|`)
}

// HTML renders markdown text as a complete HTML page
func HTML(title, md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md), p, r)
}

// WriteMarkdown writes the markdown rendering of t to path and, next to it,
// the HTML page with the same base name.
func WriteMarkdown(path, title string, t *tables.Table) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	md := Markdown(title, t)
	if err := os.WriteFile(path, []byte(md), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	htmlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	if err := os.WriteFile(htmlPath, HTML(title, md), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}
	return htmlPath, nil
}
