package tsv

import (
	"bytes"
	"strings"
	"testing"

	"aggstat/domain/table"
)

func TestReader_ParsesHeaderAndNA(t *testing.T) {
	input := "model\tfcst_lead\ttotal\nGFS\t120000\tNA\nNAM\t60000\t100\n"

	got, err := NewReader().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", got.Len())
	}
	if !got.Row(0)[2].Missing() {
		t.Error("expected NA cell to be missing")
	}
	if f, ok := got.Row(1)[2].Float(); !ok || f != 100 {
		t.Errorf("expected numeric 100, got %v ok=%v", f, ok)
	}
}

func TestReader_ShortRowsArePadded(t *testing.T) {
	input := "a\tb\tc\n1\t2\n"

	got, err := NewReader().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !got.Row(0)[2].Missing() {
		t.Error("expected trailing cell to be NA")
	}
}

func TestReader_EmptyInputFails(t *testing.T) {
	if _, err := NewReader().Read(strings.NewReader("")); err == nil {
		t.Error("expected an error for input without a header")
	}
}

func TestWriter_RendersNAToken(t *testing.T) {
	tbl := table.New([]string{"model", "stat_value"})
	tbl.AppendRow([]table.Value{table.Str("GFS"), table.Num(0.6)})
	tbl.AppendRow([]table.Value{table.Str("NAM"), table.NA()})

	var buf bytes.Buffer
	if err := NewWriter().Write(&buf, tbl); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "model\tstat_value\nGFS\t0.6\nNAM\tNA\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestRoundTrip_PreservesValueRendering(t *testing.T) {
	input := "fcst_lead\tstat_value\n120000\t0.12345\n"

	tbl, err := NewReader().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var buf bytes.Buffer
	if err := NewWriter().Write(&buf, tbl); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != input {
		t.Errorf("expected round trip to preserve text, got %q", buf.String())
	}
}
