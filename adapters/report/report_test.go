package report

import (
	"strings"
	"testing"
	"time"

	"aggstat/domain/table"
	"aggstat/ports"
)

func TestMarkdown_ContainsMetadataAndRows(t *testing.T) {
	out := table.New([]string{"model", "stat_name", "stat_value"})
	out.AppendRow([]table.Value{table.Str("GFS"), table.Str("BASER"), table.Num(0.6)})
	out.AppendRow([]table.Value{table.Str("NAM"), table.Str("BASER"), table.NA()})

	record := ports.RunRecord{
		ID:         "run-1",
		LineType:   "ctc",
		Statistics: []string{"BASER"},
		InputRows:  2,
		OutputRows: 2,
		StartedAt:  time.Unix(0, 0),
		FinishedAt: time.Unix(1, 0),
	}

	doc := NewGenerator().Markdown(record, out)
	for _, want := range []string{"run-1", "`ctc`", "| GFS | BASER | 0.6 |", "| NAM | BASER | NA |"} {
		if !strings.Contains(doc, want) {
			t.Errorf("expected report to contain %q", want)
		}
	}
}
