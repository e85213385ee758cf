package table

import "testing"

func TestStr_DetectsNumericContent(t *testing.T) {
	if f, ok := Str("12.5").Float(); !ok || f != 12.5 {
		t.Errorf("expected numeric 12.5, got %v ok=%v", f, ok)
	}
	if _, ok := Str("FCST").Float(); ok {
		t.Error("expected text cell to not be numeric")
	}
	if !NA().Missing() {
		t.Error("expected NA to be missing")
	}
}

func TestMatches_IntegerFiltersCompareNumerically(t *testing.T) {
	if !Str("12.0").Matches("12") {
		t.Error(`expected "12.0" to match filter "12"`)
	}
	if Str("12.5").Matches("12") {
		t.Error(`expected "12.5" to not match filter "12"`)
	}
	if !Str("GFS").Matches("GFS") {
		t.Error("expected text to match as text")
	}
}

func TestAppendRow_PadsShortRows(t *testing.T) {
	tbl := New([]string{"a", "b", "c"})
	tbl.AppendRow([]Value{Num(1)})

	row := tbl.Row(0)
	if len(row) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(row))
	}
	if !row[2].Missing() {
		t.Error("expected padded cell to be NA")
	}
}

func TestTake_RepeatsRowsForResampling(t *testing.T) {
	tbl := New([]string{"x"})
	tbl.AppendRow([]Value{Num(1)})
	tbl.AppendRow([]Value{Num(2)})

	view := tbl.Take([]int{1, 1, 0})
	if view.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", view.Len())
	}
	if f, _ := view.Row(0)[0].Float(); f != 2 {
		t.Errorf("expected first resampled row to be 2, got %v", f)
	}
	if f, _ := view.Row(2)[0].Float(); f != 1 {
		t.Errorf("expected last resampled row to be 1, got %v", f)
	}
}

func TestTemporalColumn_Priority(t *testing.T) {
	tbl := New([]string{"fcst_init", "fcst_valid_beg", "stat_name"})
	col, ok := tbl.TemporalColumn()
	if !ok || col != "fcst_valid_beg" {
		t.Errorf("expected fcst_valid_beg to win, got %q ok=%v", col, ok)
	}
}

func TestPrepareScaled_MultipliesByTotalOnce(t *testing.T) {
	tbl := New([]string{"total", "fbar", "obar"})
	tbl.AppendRow([]Value{Num(4), Num(2.5), Num(3)})

	scaled := tbl.PrepareScaled([]string{"fbar", "fbar"})
	if f, _ := scaled.Row(0)[1].Float(); f != 10 {
		t.Errorf("expected fbar scaled to 10, got %v", f)
	}
	if f, _ := scaled.Row(0)[2].Float(); f != 3 {
		t.Errorf("expected obar untouched, got %v", f)
	}
	// Source table stays intact.
	if f, _ := tbl.Row(0)[1].Float(); f != 2.5 {
		t.Errorf("expected source fbar unchanged, got %v", f)
	}
}

func TestSortByCase_OrdersByTemporalLeadStat(t *testing.T) {
	tbl := New([]string{"fcst_valid_beg", "fcst_lead", "stat_name", "v"})
	tbl.AppendRow([]Value{Str("2020-01-02"), Str("120000"), Str("RMSE"), Num(1)})
	tbl.AppendRow([]Value{Str("2020-01-01"), Str("120000"), Str("RMSE"), Num(2)})
	tbl.AppendRow([]Value{Str("2020-01-01"), Str("60000"), Str("RMSE"), Num(3)})

	sorted := tbl.SortByCase()
	want := []float64{3, 2, 1}
	for i, w := range want {
		if f, _ := sorted.Row(i)[3].Float(); f != w {
			t.Errorf("row %d: expected %v, got %v", i, w, f)
		}
	}
}
