package agg

import (
	"bytes"
	"testing"

	"aggstat/domain/series"
	"aggstat/domain/table"
	"aggstat/internal"
	"aggstat/internal/config"
)

func quiet() *internal.Logger {
	return internal.NewLoggerWithOutput(internal.LogLevelError, &bytes.Buffer{})
}

func appendRow(t *table.Table, cells ...string) {
	row := make([]table.Value, len(cells))
	for i, c := range cells {
		row[i] = table.Str(c)
	}
	t.AppendRow(row)
}

// cell finds the stat_value-family cell of the output row matching the given
// series column value and stat name.
func cell(t *testing.T, out *table.Table, seriesCol, seriesVal, statName, field string) table.Value {
	t.Helper()
	si := out.ColumnIndex(seriesCol)
	ni := out.ColumnIndex("stat_name")
	fi := out.ColumnIndex(field)
	if si < 0 || ni < 0 || fi < 0 {
		t.Fatalf("output is missing columns: %v", out.Columns())
	}
	for i := 0; i < out.Len(); i++ {
		row := out.Row(i)
		if row[si].Text() == seriesVal && row[ni].Text() == statName {
			return row[fi]
		}
	}
	t.Fatalf("no output row for %s=%s stat=%s", seriesCol, seriesVal, statName)
	return table.NA()
}

func ctcSettings() *config.Settings {
	return &config.Settings{
		LineType:   "ctc",
		SeriesVals: []series.ValueSet{{Name: "model", Values: []string{"GFS"}}},
		IndyVar:    "fcst_lead",
		IndyVals:   []string{"120000"},
		Statistics: []string{"BASER", "ACC"},
		Iterations: 1,
		Threads:    1,
		Method:     "perc",
		Alpha:      0.05,
	}
}

func TestRun_ContingencyTableValues(t *testing.T) {
	data := table.New([]string{"model", "fcst_valid_beg", "fcst_lead", "stat_name",
		"total", "fy_oy", "fy_on", "fn_oy", "fn_on"})
	appendRow(data, "GFS", "2020-01-01 12:00:00", "120000", "CTC", "100", "50", "5", "10", "35")

	out, err := New(ctcSettings(), quiet()).Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected 2 output rows, got %d", out.Len())
	}

	if v, _ := cell(t, out, "model", "GFS", "BASER", "stat_value").Float(); v != 0.6 {
		t.Errorf("expected BASER=0.6, got %v", v)
	}
	if v, _ := cell(t, out, "model", "GFS", "ACC", "stat_value").Float(); v != 0.85 {
		t.Errorf("expected ACC=0.85, got %v", v)
	}
	// Single iteration: no confidence bounds.
	if !cell(t, out, "model", "GFS", "BASER", "stat_bcl").Missing() {
		t.Error("expected NA lower bound without resampling")
	}
	if cell(t, out, "model", "GFS", "BASER", "nstats").Text() != "1" {
		t.Error("expected nstats=1 for the single contributing record")
	}
}

func TestRun_StatisticMajorOutputOrder(t *testing.T) {
	data := table.New([]string{"model", "fcst_valid_beg", "fcst_lead", "stat_name",
		"total", "fy_oy", "fy_on", "fn_oy", "fn_on"})
	appendRow(data, "GFS", "2020-01-01 12:00:00", "120000", "CTC", "100", "50", "5", "10", "35")

	out, err := New(ctcSettings(), quiet()).Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	ni := out.ColumnIndex("stat_name")
	if out.Row(0)[ni].Text() != "BASER" || out.Row(1)[ni].Text() != "ACC" {
		t.Errorf("expected BASER before ACC, got %q then %q",
			out.Row(0)[ni].Text(), out.Row(1)[ni].Text())
	}
}

// derivedData builds an sl1l2 input where both models carry identical values
// over several dates.
func derivedData() *table.Table {
	data := table.New([]string{"model", "fcst_valid_beg", "fcst_lead", "stat_name",
		"total", "fbar", "obar", "ffbar", "oobar", "fobar"})
	dates := []string{"2020-01-01", "2020-01-02", "2020-01-03", "2020-01-04", "2020-01-05"}
	vals := []string{"2", "4", "3", "5", "1"}
	for _, model := range []string{"GFS", "GFS2"} {
		for i, d := range dates {
			appendRow(data, model, d+" 12:00:00", "120000", "SL1L2",
				"10", vals[i], vals[i], "9", "9", "9")
		}
	}
	return data
}

func derivedSettings(iterations int) *config.Settings {
	var seed int64 = 42
	return &config.Settings{
		LineType:      "sl1l2",
		SeriesVals:    []series.ValueSet{{Name: "model", Values: []string{"GFS", "GFS2"}}},
		DerivedSeries: []series.DerivedSpec{series.ParseDerivedSpec("GFS", "GFS2", "DIFF")},
		IndyVar:       "fcst_lead",
		IndyVals:      []string{"120000"},
		Statistics:    []string{"FBAR"},
		Iterations:    iterations,
		Threads:       2,
		Method:        "perc",
		Alpha:         0.05,
		RandomSeed:    &seed,
	}
}

func TestRun_DerivedDiffOfIdenticalSeriesIsZero(t *testing.T) {
	out, err := New(derivedSettings(1), quiet()).Run(derivedData())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 3 {
		t.Fatalf("expected 2 base + 1 derived rows, got %d", out.Len())
	}

	v, ok := cell(t, out, "model", "DIFF(GFS-GFS2)", "FBAR", "stat_value").Float()
	if !ok || v != 0 {
		t.Errorf("expected derived DIFF=0, got %v ok=%v", v, ok)
	}
	if cell(t, out, "model", "DIFF(GFS-GFS2)", "FBAR", "nstats").Text() != "0" {
		t.Error("expected nstats=0 for a derived series")
	}
}

func TestRun_DerivedResampledIntervalStraddlesZero(t *testing.T) {
	out, err := New(derivedSettings(300), quiet()).Run(derivedData())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	lo, okLo := cell(t, out, "model", "DIFF(GFS-GFS2)", "FBAR", "stat_bcl").Float()
	hi, okHi := cell(t, out, "model", "DIFF(GFS-GFS2)", "FBAR", "stat_bcu").Float()
	if !okLo || !okHi {
		t.Fatal("expected derived confidence bounds")
	}
	if lo > 0 || hi < 0 {
		t.Errorf("expected [%v, %v] to straddle 0", lo, hi)
	}
}

func TestRun_FixedSeedReproducesOutput(t *testing.T) {
	first, err := New(derivedSettings(200), quiet()).Run(derivedData())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := New(derivedSettings(200), quiet()).Run(derivedData())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if first.Len() != second.Len() {
		t.Fatalf("row counts differ: %d vs %d", first.Len(), second.Len())
	}
	for i := 0; i < first.Len(); i++ {
		for j := range first.Columns() {
			if first.Row(i)[j].Text() != second.Row(i)[j].Text() {
				t.Fatalf("row %d column %s differs: %q vs %q", i, first.Columns()[j],
					first.Row(i)[j].Text(), second.Row(i)[j].Text())
			}
		}
	}
}

// duplicateCaseData has two rows per model sharing the same (valid, lead,
// stat_name) case.
func duplicateCaseData(statName string) *table.Table {
	data := table.New([]string{"model", "fcst_valid_beg", "fcst_lead", "stat_name",
		"total", "ffbar", "oobar", "fobar"})
	for _, model := range []string{"GFS", "GFS2"} {
		appendRow(data, model, "2020-01-01 12:00:00", "120000", statName, "10", "4", "4", "4")
		appendRow(data, model, "2020-01-01 12:00:00", "120000", statName, "10", "6", "6", "6")
	}
	return data
}

func duplicateCaseSettings(statistic string) *config.Settings {
	return &config.Settings{
		LineType:      "ssvar",
		SeriesVals:    []series.ValueSet{{Name: "model", Values: []string{"GFS", "GFS2"}}},
		DerivedSeries: []series.DerivedSpec{series.ParseDerivedSpec("GFS", "GFS2", "DIFF")},
		IndyVar:       "fcst_lead",
		IndyVals:      []string{"120000"},
		Statistics:    []string{statistic},
		Iterations:    1,
		Threads:       1,
		Method:        "perc",
		Alpha:         0.05,
	}
}

func TestRun_DuplicateCasesFailNonExemptDerived(t *testing.T) {
	out, err := New(duplicateCaseSettings("SSVAR_MSE"), quiet()).Run(duplicateCaseData("SSVAR_MSE"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !cell(t, out, "model", "DIFF(GFS-GFS2)", "SSVAR_MSE", "stat_value").Missing() {
		t.Error("expected NA for a duplicate-case derived series")
	}
	// Base series still compute.
	if cell(t, out, "model", "GFS", "SSVAR_MSE", "stat_value").Missing() {
		t.Error("expected base series to survive the duplicate cases")
	}
}

func TestRun_DuplicateCasesAllowedForExemptStatistic(t *testing.T) {
	out, err := New(duplicateCaseSettings("SSVAR_RMSE"), quiet()).Run(duplicateCaseData("SSVAR_RMSE"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	v, ok := cell(t, out, "model", "DIFF(GFS-GFS2)", "SSVAR_RMSE", "stat_value").Float()
	if !ok {
		t.Fatal("expected the exempt statistic to produce a derived value")
	}
	if v != 0 {
		t.Errorf("expected DIFF of identical components to be 0, got %v", v)
	}
}

func TestRun_DerivedRowCarriesComponentSeriesValues(t *testing.T) {
	data := table.New([]string{"model", "vx_mask", "fcst_valid_beg", "fcst_lead", "stat_name",
		"total", "fy_oy", "fy_on", "fn_oy", "fn_on"})
	appendRow(data, "GFS", "FULL", "2020-01-01 12:00:00", "120000", "CTC", "100", "50", "5", "10", "35")
	appendRow(data, "NAM", "FULL", "2020-01-01 12:00:00", "120000", "CTC", "100", "40", "10", "20", "30")

	settings := &config.Settings{
		LineType: "ctc",
		SeriesVals: []series.ValueSet{
			{Name: "model", Values: []string{"GFS", "NAM"}},
			{Name: "vx_mask", Values: []string{"FULL"}},
		},
		DerivedSeries: []series.DerivedSpec{series.ParseDerivedSpec("GFS FULL", "NAM FULL", "DIFF")},
		IndyVar:       "fcst_lead",
		IndyVals:      []string{"120000"},
		Statistics:    []string{"BASER"},
		Iterations:    1,
		Threads:       1,
		Method:        "perc",
		Alpha:         0.05,
	}

	out, err := New(settings, quiet()).Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// The curve name lands in the last series column; the leading model
	// column keeps the first component's value rather than going missing.
	name := "DIFF(GFS FULL-NAM FULL)"
	got := cell(t, out, "vx_mask", name, "BASER", "model")
	if got.Missing() || got.Text() != "GFS" {
		t.Errorf("expected derived row model=GFS, got %q", got.Text())
	}
}

func TestRun_EmptyInputProducesEmptyOutput(t *testing.T) {
	data := table.New([]string{"model", "fcst_valid_beg", "fcst_lead", "stat_name", "total"})

	out, err := New(ctcSettings(), quiet()).Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.Empty() {
		t.Errorf("expected no output rows, got %d", out.Len())
	}
}

func TestRun_EventEqualizationTrimsUnsharedCases(t *testing.T) {
	settings := ctcSettings()
	settings.SeriesVals = []series.ValueSet{{Name: "model", Values: []string{"GFS", "NAM"}}}
	settings.Statistics = []string{"BASER"}
	settings.EventEqual = true

	data := table.New([]string{"model", "fcst_valid_beg", "fcst_lead", "stat_name",
		"total", "fy_oy", "fy_on", "fn_oy", "fn_on"})
	appendRow(data, "GFS", "2020-01-01 12:00:00", "120000", "CTC", "100", "50", "5", "10", "35")
	appendRow(data, "GFS", "2020-01-02 12:00:00", "120000", "CTC", "100", "50", "5", "10", "35")
	appendRow(data, "NAM", "2020-01-01 12:00:00", "120000", "CTC", "100", "40", "10", "20", "30")

	out, err := New(settings, quiet()).Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// GFS keeps only the shared 2020-01-01 case.
	if cell(t, out, "model", "GFS", "BASER", "nstats").Text() != "1" {
		t.Errorf("expected GFS nstats=1 after equalization")
	}
}
