package ports

import (
	"context"
	"time"

	"aggstat/domain/table"
)

// RunRecord describes one completed aggregation run.
type RunRecord struct {
	ID         string
	LineType   string
	Statistics []string
	InputRows  int
	OutputRows int
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunArchive persists aggregation runs and their output tables for later
// inspection. Archiving is optional; a run without a configured archive
// simply skips it.
type RunArchive interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, record RunRecord, output *table.Table) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}
