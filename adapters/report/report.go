package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"aggstat/domain/table"
	"aggstat/internal/errors"
	"aggstat/ports"
)

// Generator renders a human-readable HTML summary of an aggregation run:
// the run metadata followed by the full output table.
type Generator struct{}

// NewGenerator creates a run report generator
func NewGenerator() *Generator {
	return &Generator{}
}

// WriteFile renders the report for a run into an HTML file.
func (g *Generator) WriteFile(path string, record ports.RunRecord, output *table.Table) error {
	doc := g.Markdown(record, output)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Aggregation run " + record.ID,
	})
	rendered := markdown.Render(p.Parse([]byte(doc)), renderer)

	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return errors.Wrapf(err, "writing report %s", path)
	}
	return nil
}

// Markdown builds the report source.
func (g *Generator) Markdown(record ports.RunRecord, output *table.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Aggregation run %s\n\n", record.ID)
	fmt.Fprintf(&b, "- Line type: `%s`\n", record.LineType)
	fmt.Fprintf(&b, "- Statistics: %s\n", strings.Join(record.Statistics, ", "))
	fmt.Fprintf(&b, "- Input rows: %d\n", record.InputRows)
	fmt.Fprintf(&b, "- Output rows: %d\n", record.OutputRows)
	fmt.Fprintf(&b, "- Duration: %s\n\n", record.FinishedAt.Sub(record.StartedAt))

	b.WriteString("## Results\n\n")
	writeTable(&b, output)
	return b.String()
}

func writeTable(b *strings.Builder, t *table.Table) {
	cols := t.Columns()
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for i := 0; i < t.Len(); i++ {
		cells := make([]string, len(cols))
		for j, v := range t.Row(i) {
			if v.Missing() {
				cells[j] = "NA"
			} else {
				cells[j] = v.Text()
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}
