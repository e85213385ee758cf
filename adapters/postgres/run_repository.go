package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"aggstat/domain/table"
	"aggstat/internal/errors"
	"aggstat/ports"
)

// runRepository implements the RunArchive interface
type runRepository struct {
	db *sqlx.DB
}

// Connect opens a PostgreSQL connection pool
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return db, nil
}

// NewRunRepository creates a new run archive repository
func NewRunRepository(db *sqlx.DB) ports.RunArchive {
	return &runRepository{db: db}
}

// EnsureSchema creates the archive tables when they do not exist yet.
func (r *runRepository) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS agg_runs (
		id TEXT PRIMARY KEY,
		line_type TEXT NOT NULL,
		statistics JSONB NOT NULL,
		input_rows INT NOT NULL,
		output_rows INT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS agg_run_rows (
		run_id TEXT NOT NULL REFERENCES agg_runs(id) ON DELETE CASCADE,
		row_index INT NOT NULL,
		cells JSONB NOT NULL,
		PRIMARY KEY (run_id, row_index)
	);`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("creating archive schema: %w", err))
	}
	return nil
}

// SaveRun stores the run record and its full output table in one transaction
func (r *runRepository) SaveRun(ctx context.Context, record ports.RunRecord, output *table.Table) error {
	statsJSON, err := json.Marshal(record.Statistics)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer tx.Rollback()

	query := `INSERT INTO agg_runs (
		id, line_type, statistics, input_rows, output_rows, started_at, finished_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, query,
		record.ID, record.LineType, statsJSON,
		record.InputRows, record.OutputRows, record.StartedAt, record.FinishedAt,
	); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to insert run: %w", err))
	}

	rowQuery := `INSERT INTO agg_run_rows (run_id, row_index, cells) VALUES ($1, $2, $3)`
	columns := output.Columns()
	for i := 0; i < output.Len(); i++ {
		cells := make(map[string]*string, len(columns))
		for j, col := range columns {
			v := output.Row(i)[j]
			if v.Missing() {
				cells[col] = nil
			} else {
				text := v.Text()
				cells[col] = &text
			}
		}
		cellsJSON, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("failed to marshal output row %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, rowQuery, record.ID, i, cellsJSON); err != nil {
			return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to insert output row %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// GetRun retrieves a run record by its ID
func (r *runRepository) GetRun(ctx context.Context, id string) (*ports.RunRecord, error) {
	query := `SELECT id, line_type, statistics, input_rows, output_rows, started_at, finished_at
	FROM agg_runs WHERE id = $1`

	var record ports.RunRecord
	var statsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.LineType, &statsJSON,
		&record.InputRows, &record.OutputRows, &record.StartedAt, &record.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.CodeDatabaseError, fmt.Sprintf("run %s not found", id))
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	if err := json.Unmarshal(statsJSON, &record.Statistics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statistics: %w", err)
	}
	return &record, nil
}

// ListRuns retrieves the most recent run records
func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, line_type, statistics, input_rows, output_rows, started_at, finished_at
	FROM agg_runs ORDER BY started_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer rows.Close()

	var records []ports.RunRecord
	for rows.Next() {
		var record ports.RunRecord
		var statsJSON []byte
		if err := rows.Scan(&record.ID, &record.LineType, &statsJSON,
			&record.InputRows, &record.OutputRows, &record.StartedAt, &record.FinishedAt); err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError, err)
		}
		if err := json.Unmarshal(statsJSON, &record.Statistics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal statistics: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
