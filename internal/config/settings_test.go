package config

import (
	"testing"

	apperrors "aggstat/internal/errors"
)

const sampleSettings = `
line_type: ctc
series_val:
  model:
    - GFS
    - NAM
  vx_mask:
    - CONUS
derived_series:
  - [GFS CONUS, NAM CONUS, DIFF]
fixed_vars_vals_input:
  fcst_var:
    fcst_var_0:
      - TMP
indy_var: fcst_lead
indy_vals:
  - 60000
  - 120000
list_stat:
  - BASER
  - ACC
list_static_val:
  fcst_var: TMP
num_iterations: 100
num_threads: 4
method: perc
alpha: 0.05
random_seed: 42
event_equal: "True"
agg_stat_input: ./in.data
agg_stat_output: ./out.data
`

func TestParseSettings_FullDocument(t *testing.T) {
	s, err := ParseSettings([]byte(sampleSettings))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if s.LineType != "ctc" {
		t.Errorf("expected line_type ctc, got %q", s.LineType)
	}
	if len(s.SeriesVals) != 2 || s.SeriesVals[0].Name != "model" || s.SeriesVals[1].Name != "vx_mask" {
		t.Errorf("expected series variables in declaration order, got %+v", s.SeriesVals)
	}
	if len(s.SeriesVals[0].Values) != 2 || s.SeriesVals[0].Values[1] != "NAM" {
		t.Errorf("expected model values [GFS NAM], got %v", s.SeriesVals[0].Values)
	}
	if len(s.IndyVals) != 2 || s.IndyVals[0] != "60000" {
		t.Errorf("expected numeric indy_vals kept as text, got %v", s.IndyVals)
	}
	if len(s.DerivedSeries) != 1 || s.DerivedSeries[0].Operation != "DIFF" {
		t.Errorf("expected one DIFF derived spec, got %+v", s.DerivedSeries)
	}
	if len(s.FixedVals) != 1 || s.FixedVals[0].Name != "fcst_var" || s.FixedVals[0].Values[0] != "TMP" {
		t.Errorf("expected flattened fixed vars, got %+v", s.FixedVals)
	}
	if len(s.StaticVals) != 1 || s.StaticVals[0].Name != "fcst_var" || s.StaticVals[0].Value != "TMP" {
		t.Errorf("expected static val fcst_var=TMP, got %+v", s.StaticVals)
	}
	if s.RandomSeed == nil || *s.RandomSeed != 42 {
		t.Errorf("expected random seed 42, got %v", s.RandomSeed)
	}
	if !s.EventEqual {
		t.Error("expected event_equal to parse as true")
	}
}

func TestParseSettings_UnknownStatisticFailsFast(t *testing.T) {
	doc := `
indy_var: fcst_lead
indy_vals: ["60000"]
list_stat: [NOT_A_STAT]
`
	_, err := ParseSettings([]byte(doc))
	if err == nil {
		t.Fatal("expected an error for an unknown statistic")
	}
	if apperrors.GetCode(err) != apperrors.CodeUnknownStatistic {
		t.Errorf("expected UNKNOWN_STATISTIC, got %s", apperrors.GetCode(err))
	}
}

func TestParseSettings_UnknownMethodFailsFast(t *testing.T) {
	doc := `
indy_var: fcst_lead
indy_vals: ["60000"]
list_stat: [RMSE]
method: studentized
`
	if _, err := ParseSettings([]byte(doc)); err == nil {
		t.Fatal("expected an error for an unknown CI method")
	}
}

func TestParseSettings_Defaults(t *testing.T) {
	doc := `
indy_var: fcst_lead
indy_vals: ["60000"]
list_stat: [RMSE]
`
	s, err := ParseSettings([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Iterations != 1 || s.Threads != 1 || s.Method != "perc" || s.Alpha != 0.05 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.EventEqual {
		t.Error("expected event_equal to default to false")
	}
}

func TestParseSettings_BadDerivedEntry(t *testing.T) {
	doc := `
indy_var: fcst_lead
indy_vals: ["60000"]
list_stat: [RMSE]
derived_series:
  - [GFS, NAM]
`
	if _, err := ParseSettings([]byte(doc)); err == nil {
		t.Fatal("expected an error for a two-element derived entry")
	}
}
