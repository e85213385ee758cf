package agg

import (
	"math/rand"
	"strconv"
	"strings"

	"aggstat/domain/series"
	"aggstat/domain/stat"
	"aggstat/domain/table"
	"aggstat/internal"
	"aggstat/internal/bootstrap"
	"aggstat/internal/config"
	"aggstat/internal/equalize"
	apperrors "aggstat/internal/errors"
)

// AggStat aggregates verification statistics over series of records and
// attaches bootstrap confidence intervals. One instance runs one job.
type AggStat struct {
	Settings *config.Settings
	Registry *stat.Registry
	Logger   *internal.Logger
}

// New builds an aggregator for a validated settings object.
func New(settings *config.Settings, logger *internal.Logger) *AggStat {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AggStat{
		Settings: settings,
		Registry: stat.NewRegistry(),
		Logger:   logger,
	}
}

// distEntry keeps a computed distribution together with its series identity,
// in generation order, for derived component matching.
type distEntry struct {
	fields []string
	dist   bootstrap.Distribution
}

// Run aggregates the input table into one output row per series. Failures of
// a single series or statistic degrade to NA cells; only configuration
// problems that invalidate the whole job return an error.
func (a *AggStat) Run(data *table.Table) (*table.Table, error) {
	s := a.Settings
	out := a.newOutput()
	if data == nil || data.Empty() {
		return out, nil
	}

	var seed int64 = 1
	if s.RandomSeed != nil {
		seed = *s.RandomSeed
	}
	src := rand.New(rand.NewSource(seed))

	if s.EventEqual {
		data = equalize.Equalize(data, equalize.Request{
			IndyVar:       s.IndyVar,
			SeriesVals:    s.SeriesVals,
			FixedVals:     s.FixedVals,
			ByIndependent: true,
			MultiEvent:    s.LineType == "ssvar",
		}, a.Logger)
		if data.Empty() {
			a.Logger.Warn("event equalization removed every row")
			return out, nil
		}
	}

	resolver := &series.Resolver{
		SeriesVals: s.SeriesVals,
		IndyVar:    s.IndyVar,
		IndyVals:   s.IndyVals,
		Statistics: s.Statistics,
		Derived:    s.DerivedSeries,
	}
	allSeries := resolver.Resolve()
	hasDerived := len(s.DerivedSeries) > 0

	derivedByName := make(map[string]series.DerivedSpec, len(s.DerivedSeries))
	for _, spec := range s.DerivedSeries {
		derivedByName[spec.Name()] = spec
	}

	var entries []distEntry
	currentStat := ""
	for _, sr := range allSeries {
		if sr.Statistic != currentStat {
			// Distributions only pair within one statistic.
			currentStat = sr.Statistic
			entries = entries[:0]
		}

		var dist bootstrap.Distribution
		var spec *series.DerivedSpec
		nstats := 0
		if !sr.Derived {
			subset := resolver.Subset(sr, data)
			nstats = subset.Len()
			dist = a.estimateBase(sr, subset, src, hasDerived)
			entries = append(entries, distEntry{fields: sr.Fields, dist: dist})
		} else {
			if ds, ok := derivedByName[sr.Fields[0]]; ok {
				spec = &ds
			}
			var err error
			dist, err = a.combineDerived(sr, derivedByName, entries, src)
			if err != nil {
				a.Logger.Error("derived series %q: %v", sr.Fields[0], err)
				dist = bootstrap.Distribution{}
			}
		}

		a.appendRow(out, sr, spec, dist, nstats)
	}
	return out, nil
}

// estimateBase computes one base series distribution. Unknown statistics and
// estimation failures degrade to an empty distribution.
func (a *AggStat) estimateBase(sr series.Series, subset *table.Table, src *rand.Rand, keep bool) bootstrap.Distribution {
	fn, ok := a.Registry.Lookup(sr.Statistic)
	if !ok {
		a.Logger.Error("%v", apperrors.UnknownStatistic(sr.Statistic))
		return bootstrap.Distribution{}
	}

	prepared := a.prepare(subset, sr.Statistic)
	dist, err := bootstrap.Estimate(prepared, bootstrap.StatFunc(fn), bootstrap.Options{
		Iterations:   a.Settings.Iterations,
		Workers:      a.Settings.Threads,
		Method:       a.Settings.Method,
		Alpha:        a.Settings.Alpha,
		Source:       src,
		KeepOriginal: keep,
	})
	if err != nil {
		a.Logger.Error("series %v: %v", sr.Fields, err)
		return bootstrap.Distribution{}
	}
	return dist
}

// prepare applies the line-type column scaling exactly once, before any
// resampling. Only the scalar partial-sum line types store per-record means
// that need multiplying by total; count line types pass through.
func (a *AggStat) prepare(subset *table.Table, statistic string) *table.Table {
	switch a.Settings.LineType {
	case "sl1l2", "sal1l2":
		if cols := stat.ScaleColumns(statistic); len(cols) > 0 {
			return subset.PrepareScaled(cols)
		}
	}
	return subset
}

// newOutput creates the empty result table: static columns, series variable
// columns, the independent variable, and the statistic fields.
func (a *AggStat) newOutput() *table.Table {
	var cols []string
	for _, sv := range a.Settings.StaticVals {
		cols = append(cols, sv.Name)
	}
	for _, vs := range a.Settings.SeriesVals {
		cols = append(cols, vs.Name)
	}
	cols = append(cols, a.Settings.IndyVar, "stat_name", "stat_value", "stat_bcl", "stat_bcu", "nstats")
	return table.New(cols)
}

func (a *AggStat) appendRow(out *table.Table, sr series.Series, spec *series.DerivedSpec, dist bootstrap.Distribution, nstats int) {
	var row []table.Value
	for _, sv := range a.Settings.StaticVals {
		row = append(row, table.Str(sv.Value))
	}
	if sr.Derived {
		// The synthesized curve name occupies the last series column;
		// leading series columns carry the first component's values.
		for i := 0; i < len(a.Settings.SeriesVals)-1; i++ {
			row = append(row, derivedSeriesValue(a.Settings.SeriesVals[i].Values, spec))
		}
		row = append(row, table.Str(sr.Fields[0]))
	} else {
		for i := range a.Settings.SeriesVals {
			row = append(row, table.Str(sr.Fields[i]))
		}
	}
	indy := sr.Fields[len(sr.Fields)-2]
	row = append(row,
		table.Str(indy),
		table.Str(sr.Statistic),
		numOrNA(dist.Value),
		numOrNA(dist.LowerBound),
		numOrNA(dist.UpperBound),
		table.Str(strconv.Itoa(nstats)),
	)
	out.AppendRow(row)
}

// derivedSeriesValue fills a leading series column of a derived row with the
// configured values of that variable that appear among the first component's
// tokens.
func derivedSeriesValue(values []string, spec *series.DerivedSpec) table.Value {
	if spec == nil {
		return table.NA()
	}
	var kept []string
	for _, v := range values {
		for _, tok := range spec.First {
			if v == tok {
				kept = append(kept, v)
				break
			}
		}
	}
	if len(kept) == 0 {
		return table.NA()
	}
	return table.Str(strings.Join(kept, ","))
}

func numOrNA(v *float64) table.Value {
	if v == nil {
		return table.NA()
	}
	return table.Num(*v)
}
