package tsv

import (
	"bufio"
	"io"
	"os"
	"strings"

	"aggstat/domain/table"
	"aggstat/internal/errors"
)

// Writer renders tables as tab-separated text with NA for missing cells.
type Writer struct{}

// NewWriter creates a tab-separated table writer
func NewWriter() *Writer {
	return &Writer{}
}

// WriteFile writes a table to a path, creating or truncating it.
func (w *Writer) WriteFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating output file %s", path)
	}
	defer f.Close()
	return w.Write(f, t)
}

// Write renders the header and all rows.
func (w *Writer) Write(dst io.Writer, t *table.Table) error {
	buf := bufio.NewWriter(dst)
	if _, err := buf.WriteString(strings.Join(t.Columns(), "\t") + "\n"); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for j, cell := range row {
			if j > 0 {
				if err := buf.WriteByte('\t'); err != nil {
					return errors.Wrap(err, "writing row")
				}
			}
			text := cell.Text()
			if cell.Missing() {
				text = NAToken
			}
			if _, err := buf.WriteString(text); err != nil {
				return errors.Wrap(err, "writing row")
			}
		}
		if err := buf.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	return errors.Wrap(buf.Flush(), "flushing output")
}
