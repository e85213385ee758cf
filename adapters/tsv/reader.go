package tsv

import (
	"bufio"
	"io"
	"os"
	"strings"

	"aggstat/domain/table"
	"aggstat/internal/errors"
)

// NAToken is the literal rendering of a missing value.
const NAToken = "NA"

// Reader loads tab-separated record tables with a header row.
type Reader struct{}

// NewReader creates a tab-separated table reader
func NewReader() *Reader {
	return &Reader{}
}

// ReadFile loads a table from a path.
func (r *Reader) ReadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening input file %s", path)
	}
	defer f.Close()
	return r.Read(f)
}

// Read parses a tab-separated stream. The first line names the columns; NA
// cells become missing values, everything else keeps its text (numeric cells
// are detected on access).
func (r *Reader) Read(src io.Reader) (*table.Table, error) {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "reading header")
		}
		return nil, errors.InvalidInput("input has no header row")
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	out := table.New(header)

	line := 1
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if text == "" {
			continue
		}
		cells := strings.Split(text, "\t")
		if len(cells) > len(header) {
			return nil, errors.InvalidInput("row has more cells than the header")
		}
		row := make([]table.Value, len(cells))
		for i, c := range cells {
			if c == NAToken || c == "" {
				row[i] = table.NA()
			} else {
				row[i] = table.Str(c)
			}
		}
		out.AppendRow(row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading input at line %d", line)
	}
	return out, nil
}
