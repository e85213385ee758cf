package series

import (
	"reflect"
	"testing"

	"aggstat/domain/table"
)

func TestResolve_StatisticMajorOrdering(t *testing.T) {
	r := &Resolver{
		SeriesVals: []ValueSet{{Name: "model", Values: []string{"GFS", "NAM"}}},
		IndyVar:    "fcst_lead",
		IndyVals:   []string{"60000", "120000"},
		Statistics: []string{"RMSE", "ME"},
	}

	got := r.Resolve()
	if len(got) != 8 {
		t.Fatalf("expected 8 series, got %d", len(got))
	}
	// Statistic outermost, series value next, independent value innermost.
	want := [][]string{
		{"GFS", "60000", "RMSE"},
		{"GFS", "120000", "RMSE"},
		{"NAM", "60000", "RMSE"},
		{"NAM", "120000", "RMSE"},
		{"GFS", "60000", "ME"},
		{"GFS", "120000", "ME"},
		{"NAM", "60000", "ME"},
		{"NAM", "120000", "ME"},
	}
	for i, w := range want {
		if !reflect.DeepEqual(got[i].Fields, w) {
			t.Errorf("series %d: expected %v, got %v", i, w, got[i].Fields)
		}
	}
}

func TestResolve_DerivedAppendedPerStatistic(t *testing.T) {
	r := &Resolver{
		SeriesVals: []ValueSet{{Name: "model", Values: []string{"GFS", "NAM"}}},
		IndyVar:    "fcst_lead",
		IndyVals:   []string{"60000"},
		Statistics: []string{"RMSE"},
		Derived:    []DerivedSpec{ParseDerivedSpec("GFS", "NAM", "DIFF")},
	}

	got := r.Resolve()
	if len(got) != 3 {
		t.Fatalf("expected 2 base + 1 derived series, got %d", len(got))
	}
	last := got[2]
	if !last.Derived {
		t.Fatal("expected last series to be derived")
	}
	if last.Fields[0] != "DIFF(GFS-NAM)" {
		t.Errorf("expected synthesized name DIFF(GFS-NAM), got %q", last.Fields[0])
	}
}

func TestSubset_FiltersBySeriesAndIndependentValue(t *testing.T) {
	data := table.New([]string{"model", "fcst_lead", "v"})
	data.AppendRow([]table.Value{table.Str("GFS"), table.Str("120000"), table.Num(1)})
	data.AppendRow([]table.Value{table.Str("NAM"), table.Str("120000"), table.Num(2)})
	data.AppendRow([]table.Value{table.Str("GFS"), table.Str("60000"), table.Num(3)})

	r := &Resolver{
		SeriesVals: []ValueSet{{Name: "model", Values: []string{"GFS"}}},
		IndyVar:    "fcst_lead",
		IndyVals:   []string{"120000"},
		Statistics: []string{"RMSE"},
	}
	s := r.Resolve()[0]

	sub := r.Subset(s, data)
	if sub.Len() != 1 {
		t.Fatalf("expected 1 matching row, got %d", sub.Len())
	}
	if f, _ := sub.Row(0)[2].Float(); f != 1 {
		t.Errorf("expected the GFS/120000 row, got v=%v", f)
	}
}

func TestMatch_NumericLikeValuesCompareNumerically(t *testing.T) {
	data := table.New([]string{"model", "fcst_lead"})
	data.AppendRow([]table.Value{table.Str("GFS"), table.Str("120000.0")})

	r := &Resolver{
		SeriesVals: []ValueSet{{Name: "model", Values: []string{"GFS"}}},
		IndyVar:    "fcst_lead",
		IndyVals:   []string{"120000"},
		Statistics: []string{"RMSE"},
	}
	s := r.Resolve()[0]

	if !r.Match(s, data, data.Row(0)) {
		t.Error(`expected "120000.0" to match independent value "120000"`)
	}
}

func TestDerivedSpec_ApplyOperations(t *testing.T) {
	a, b := 5.0, 2.0
	diff := ParseDerivedSpec("x", "y", "diff")
	if v := diff.Apply(&a, &b); v == nil || *v != 3 {
		t.Errorf("expected DIFF=3, got %v", v)
	}
	ratio := ParseDerivedSpec("x", "y", "RATIO")
	if v := ratio.Apply(&a, &b); v == nil || *v != 2.5 {
		t.Errorf("expected RATIO=2.5, got %v", v)
	}
	zero := 0.0
	if v := ratio.Apply(&a, &zero); v != nil {
		t.Errorf("expected nil for zero denominator, got %v", *v)
	}
	if v := diff.Apply(nil, &b); v != nil {
		t.Errorf("expected nil when an operand is nil, got %v", *v)
	}
}

func TestIsDerivedName(t *testing.T) {
	if !IsDerivedName("DIFF(GFS TMP RMSE-NAM TMP RMSE)") {
		t.Error("expected synthesized name to be recognized")
	}
	if IsDerivedName("GFS") || IsDerivedName("(odd)") {
		t.Error("expected plain values to not be recognized")
	}
}

func TestSplit_GroupValues(t *testing.T) {
	got := Split("GFS, NAM,HRRR")
	want := []string{"GFS", "NAM", "HRRR"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !reflect.DeepEqual(Split("GFS"), []string{"GFS"}) {
		t.Error("expected ungrouped value to pass through")
	}
}
