package series

import (
	"strings"

	"aggstat/domain/table"
)

// ValueSet is one series variable with its ordered list of values. Order is
// load-bearing: series enumeration and output row order follow it. A value
// containing commas names a group alias; group semantics beyond pass-through
// matching are an unresolved extension point.
type ValueSet struct {
	Name   string
	Values []string
}

// Split returns the comma-separated members of a grouped value, or the value
// itself when ungrouped.
func Split(value string) []string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Series identifies one output row: the series-variable values in declaration
// order, then the independent-variable value, then the statistic name. A
// derived series carries its synthesized curve name in place of the
// series-variable values.
type Series struct {
	Fields    []string
	Statistic string
	Derived   bool
}

// Key returns the series identity used as a map key.
func (s Series) Key() string {
	return strings.Join(s.Fields, "\x1f")
}

// Resolver enumerates every requested series in output order.
type Resolver struct {
	SeriesVals []ValueSet
	IndyVar    string
	IndyVals   []string
	Statistics []string
	Derived    []DerivedSpec
}

// Resolve produces the ordered series list: statistic-major, and within a
// statistic the cartesian product of series-variable values with the
// independent values innermost, base series before derived.
func (r *Resolver) Resolve() []Series {
	var out []Series
	for _, statistic := range r.Statistics {
		for _, combo := range r.seriesCombos() {
			for _, indy := range r.IndyVals {
				fields := append(append([]string{}, combo...), indy, statistic)
				out = append(out, Series{Fields: fields, Statistic: statistic})
			}
		}
		for _, spec := range r.Derived {
			name := spec.Name()
			for _, indy := range r.IndyVals {
				out = append(out, Series{
					Fields:    []string{name, indy, statistic},
					Statistic: statistic,
					Derived:   true,
				})
			}
		}
	}
	return out
}

// seriesCombos builds the cartesian product of the series-variable values,
// first variable outermost.
func (r *Resolver) seriesCombos() [][]string {
	combos := [][]string{{}}
	for _, vs := range r.SeriesVals {
		var next [][]string
		for _, combo := range combos {
			for _, v := range vs.Values {
				next = append(next, append(append([]string{}, combo...), v))
			}
		}
		combos = next
	}
	return combos
}

// Match reports whether a row belongs to a base series: every series variable
// and the independent variable must equal the series' value for it.
func (r *Resolver) Match(s Series, columns *table.Table, row []table.Value) bool {
	for i, vs := range r.SeriesVals {
		ci := columns.ColumnIndex(vs.Name)
		if ci < 0 || !row[ci].Matches(s.Fields[i]) {
			return false
		}
	}
	ci := columns.ColumnIndex(r.IndyVar)
	if ci < 0 {
		return false
	}
	return row[ci].Matches(s.Fields[len(r.SeriesVals)])
}

// Subset filters the table down to the rows of a base series.
func (r *Resolver) Subset(s Series, data *table.Table) *table.Table {
	return data.Filter(func(row []table.Value) bool {
		return r.Match(s, data, row)
	})
}
