package table

import (
	"sort"
	"strconv"
	"strings"
)

// Value is a single cell of a record table. Cells arrive as text; numeric
// cells keep both the parsed float and the original text so that output and
// case-key construction reproduce the input rendering exactly.
type Value struct {
	text    string
	num     float64
	numeric bool
	present bool
}

// Num creates a numeric value.
func Num(f float64) Value {
	return Value{text: strconv.FormatFloat(f, 'g', -1, 64), num: f, numeric: true, present: true}
}

// Str creates a value from raw cell text, detecting numeric content.
func Str(s string) Value {
	trimmed := strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && trimmed != "" {
		return Value{text: s, num: f, numeric: true, present: true}
	}
	return Value{text: s, present: true}
}

// NA is the missing value. It renders as the NA token in output writers.
func NA() Value {
	return Value{}
}

// Missing reports whether the value is absent (an NA cell).
func (v Value) Missing() bool {
	return !v.present
}

// Float returns the numeric content, false if the cell is not numeric.
func (v Value) Float() (float64, bool) {
	if !v.present || !v.numeric {
		return 0, false
	}
	return v.num, true
}

// Text returns the original cell text.
func (v Value) Text() string {
	return v.text
}

// Matches compares the cell against a filter value. Integer-like filters
// compare numerically so that "12" matches "12.0"; everything else compares
// as text.
func (v Value) Matches(filter string) bool {
	if !v.present {
		return false
	}
	if n, err := strconv.Atoi(strings.TrimSpace(filter)); err == nil {
		if f, ok := v.Float(); ok {
			return f == float64(n)
		}
		return false
	}
	return v.text == filter
}

// Table is an ordered collection of rows over named columns. Filter and Take
// produce views that share row slices with the source; PrepareScaled copies
// rows before mutating them.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New creates an empty table with the given column names.
func New(columns []string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{columns: columns, index: idx}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return t.columns
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AppendRow adds a row. Short rows are padded with NA cells.
func (t *Table) AppendRow(row []Value) {
	for len(row) < len(t.columns) {
		row = append(row, NA())
	}
	t.rows = append(t.rows, row)
}

// Row returns the i-th row.
func (t *Table) Row(i int) []Value {
	return t.rows[i]
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.rows) == 0
}

// Filter returns a view containing the rows for which keep returns true.
func (t *Table) Filter(keep func(row []Value) bool) *Table {
	out := New(t.columns)
	for _, row := range t.rows {
		if keep(row) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Take returns a view assembled from the given row indices, in order.
// Indices may repeat, which is how bootstrap resamples are built.
func (t *Table) Take(indices []int) *Table {
	out := New(t.columns)
	out.rows = make([][]Value, len(indices))
	for i, idx := range indices {
		out.rows[i] = t.rows[idx]
	}
	return out
}

// Slice returns a view over rows [from, to).
func (t *Table) Slice(from, to int) *Table {
	out := New(t.columns)
	out.rows = t.rows[from:to]
	return out
}

// CloneRows returns a deep copy, detaching rows from any shared views.
func (t *Table) CloneRows() *Table {
	out := New(t.columns)
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		cp := make([]Value, len(row))
		copy(cp, row)
		out.rows[i] = cp
	}
	return out
}

// temporalColumns in priority order. Exactly one is expected per dataset.
var temporalColumns = []string{"fcst_valid_beg", "fcst_valid", "fcst_init_beg", "fcst_init"}

// TemporalColumn returns the dataset's temporal key column.
func (t *Table) TemporalColumn() (string, bool) {
	for _, c := range temporalColumns {
		if t.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

// IsTemporalColumn reports whether name is one of the temporal key
// alternatives or the lead-time column.
func IsTemporalColumn(name string) bool {
	if name == "fcst_lead" {
		return true
	}
	for _, c := range temporalColumns {
		if name == c {
			return true
		}
	}
	return false
}

// SortByCase orders rows by (temporal key, lead time, stat name). Statistic
// values do not depend on row order; the sort keeps retained series data
// aligned for paired derived computation.
func (t *Table) SortByCase() *Table {
	temporal, ok := t.TemporalColumn()
	if !ok {
		return t
	}
	ti := t.ColumnIndex(temporal)
	li := t.ColumnIndex("fcst_lead")
	si := t.ColumnIndex("stat_name")

	out := New(t.columns)
	out.rows = make([][]Value, len(t.rows))
	copy(out.rows, t.rows)
	sort.SliceStable(out.rows, func(a, b int) bool {
		ra, rb := out.rows[a], out.rows[b]
		if c := compareCell(ra, rb, ti); c != 0 {
			return c < 0
		}
		if c := compareCell(ra, rb, li); c != 0 {
			return c < 0
		}
		return compareCell(ra, rb, si) < 0
	})
	return out
}

func compareCell(a, b []Value, idx int) int {
	if idx < 0 {
		return 0
	}
	va, vb := a[idx], b[idx]
	fa, oka := va.Float()
	fb, okb := vb.Float()
	if oka && okb {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(va.Text(), vb.Text())
}
