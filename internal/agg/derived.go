package agg

import (
	"math/rand"

	"aggstat/domain/series"
	"aggstat/domain/stat"
	"aggstat/domain/table"
	"aggstat/internal/bootstrap"
	apperrors "aggstat/internal/errors"
)

// combineDerived resolves the two component distributions of a derived series
// and combines them with the configured operation. With resampling active the
// combination is re-bootstrapped in paired form: both retained tables are
// concatenated column-wise so every resample draws the same cases from both
// components, preserving their correlation.
func (a *AggStat) combineDerived(sr series.Series, specs map[string]series.DerivedSpec, entries []distEntry, src *rand.Rand) (bootstrap.Distribution, error) {
	spec, ok := specs[sr.Fields[0]]
	if !ok {
		return bootstrap.Distribution{}, apperrors.SeriesNotFound(sr.Fields[0])
	}

	// Component candidate sets share the series suffix: the independent
	// value and the statistic name.
	firstSet, secondSet := spec.ComponentTokens(sr.Fields[1:])

	first := findComponent(entries, firstSet)
	second := findComponent(entries, secondSet)
	if first == nil {
		return bootstrap.Distribution{}, apperrors.SeriesNotFound(componentName(spec.First))
	}
	if second == nil {
		return bootstrap.Distribution{}, apperrors.SeriesNotFound(componentName(spec.Second))
	}

	d1, d2 := first.dist, second.dist
	if d1.Original == nil || d1.Original.Empty() || d2.Original == nil || d2.Original.Empty() {
		return bootstrap.Distribution{}, nil
	}
	if err := validateDerivedCases(d1.Original, sr.Statistic); err != nil {
		return bootstrap.Distribution{}, err
	}
	if err := validateDerivedCases(d2.Original, sr.Statistic); err != nil {
		return bootstrap.Distribution{}, err
	}

	if a.Settings.Iterations <= 1 {
		return bootstrap.Distribution{Value: spec.Apply(d1.Value, d2.Value)}, nil
	}

	t1 := d1.Original.SortByCase()
	t2 := d2.Original.SortByCase()
	if t1.Len() != t2.Len() {
		a.Logger.Warn("derived series %q: components have %d and %d cases, skipping",
			sr.Fields[0], t1.Len(), t2.Len())
		return bootstrap.Distribution{}, nil
	}

	fn, ok := a.Registry.Lookup(sr.Statistic)
	if !ok {
		return bootstrap.Distribution{}, apperrors.UnknownStatistic(sr.Statistic)
	}

	paired := pairTables(t1, t2)
	split := len(t1.Columns())
	cols1 := t1.Columns()
	cols2 := t2.Columns()
	derivedFn := func(t *table.Table) *float64 {
		v1 := fn(half(t, cols1, 0, split))
		v2 := fn(half(t, cols2, split, len(t.Columns())))
		return spec.Apply(v1, v2)
	}

	return bootstrap.Estimate(paired, derivedFn, bootstrap.Options{
		Iterations: a.Settings.Iterations,
		Workers:    a.Settings.Threads,
		Method:     a.Settings.Method,
		Alpha:      a.Settings.Alpha,
		Source:     src,
	})
}

// findComponent returns the first entry, in generation order, whose series
// values are all contained in the candidate token set. Containment, not
// equality: a component spec restricts, it does not fully name a series.
func findComponent(entries []distEntry, tokens map[string]struct{}) *distEntry {
	for i := range entries {
		match := true
		for _, f := range entries[i].fields {
			if _, ok := tokens[f]; !ok {
				match = false
				break
			}
		}
		if match {
			return &entries[i]
		}
	}
	return nil
}

func componentName(tokens []string) string {
	name := ""
	for i, t := range tokens {
		if i > 0 {
			name += " "
		}
		name += t
	}
	return name
}

// validateDerivedCases enforces that retained component data has a single row
// per (temporal key, lead time, statistic name) case. Duplicate cases make a
// paired difference ill-defined. Spread/skill statistics that legitimately
// repeat per date are exempt.
func validateDerivedCases(t *table.Table, statistic string) error {
	if stat.ExemptFromUniqueness(statistic) {
		return nil
	}
	temporal, ok := t.TemporalColumn()
	if !ok {
		return nil
	}
	ti := t.ColumnIndex(temporal)
	li := t.ColumnIndex("fcst_lead")
	si := t.ColumnIndex("stat_name")

	seen := make(map[string]struct{}, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		key := row[ti].Text()
		if li >= 0 {
			key += "\x1f" + row[li].Text()
		}
		if si >= 0 {
			key += "\x1f" + row[si].Text()
		}
		if _, dup := seen[key]; dup {
			return apperrors.ValidationError(
				"derived curve cannot be calculated: multiple values for one valid date/fcst_lead")
		}
		seen[key] = struct{}{}
	}
	return nil
}

// pairTables concatenates two equal-length tables column-wise. The combined
// column names only serve the index; half rebuilds each side under its
// original names.
func pairTables(a, b *table.Table) *table.Table {
	cols := make([]string, 0, len(a.Columns())+len(b.Columns()))
	for _, c := range a.Columns() {
		cols = append(cols, "1:"+c)
	}
	for _, c := range b.Columns() {
		cols = append(cols, "2:"+c)
	}
	out := table.New(cols)
	for i := 0; i < a.Len(); i++ {
		row := make([]table.Value, 0, len(cols))
		row = append(row, a.Row(i)...)
		row = append(row, b.Row(i)...)
		out.AppendRow(row)
	}
	return out
}

// half extracts one component's rows back out of a paired resample.
func half(t *table.Table, columns []string, from, to int) *table.Table {
	out := table.New(columns)
	for i := 0; i < t.Len(); i++ {
		out.AppendRow(t.Row(i)[from:to])
	}
	return out
}
