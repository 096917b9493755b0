package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gomiss/domain/core"
	"gomiss/domain/missing"
)

// ResultsRepository persists analysis tables to Postgres. Each table row
// becomes one record keyed by run, table name, and row position, with the
// cells stored as a JSON array against the table header.
type ResultsRepository struct {
	db *sqlx.DB
}

// NewResultsRepository creates a new results repository
func NewResultsRepository(db *sqlx.DB) *ResultsRepository {
	return &ResultsRepository{db: db}
}

// EnsureSchema creates the results table if it does not exist
func (r *ResultsRepository) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS analysis_results (
			id          BIGSERIAL PRIMARY KEY,
			run_id      TEXT        NOT NULL,
			table_name  TEXT        NOT NULL,
			row_index   INT         NOT NULL,
			header      JSONB       NOT NULL,
			cells       JSONB       NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			UNIQUE (run_id, table_name, row_index)
		)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure analysis_results schema: %w", err)
	}
	return nil
}

// WriteTable inserts every row of a table inside one transaction
func (r *ResultsRepository) WriteTable(ctx context.Context, runID core.RunID, table missing.Table) error {
	headerJSON, err := json.Marshal(table.Header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO analysis_results (run_id, table_name, row_index, header, cells, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now()
	for i, row := range table.Rows {
		cellsJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, query, runID.String(), table.Name, i, headerJSON, cellsJSON, now); err != nil {
			return fmt.Errorf("failed to insert row %d of %q: %w", i, table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %q: %w", table.Name, err)
	}
	return nil
}

// GetTable reloads a previously written table, rows in their original order
func (r *ResultsRepository) GetTable(ctx context.Context, runID core.RunID, name string) (*missing.Table, error) {
	query := `
		SELECT header, cells
		FROM analysis_results
		WHERE run_id = $1 AND table_name = $2
		ORDER BY row_index`

	rows, err := r.db.QueryContext(ctx, query, runID.String(), name)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %q: %w", name, err)
	}
	defer rows.Close()

	table := &missing.Table{Name: name}
	for rows.Next() {
		var headerJSON, cellsJSON []byte
		if err := rows.Scan(&headerJSON, &cellsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if table.Header == nil {
			if err := json.Unmarshal(headerJSON, &table.Header); err != nil {
				return nil, fmt.Errorf("failed to unmarshal header: %w", err)
			}
		}
		var cells []string
		if err := json.Unmarshal(cellsJSON, &cells); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cells: %w", err)
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate table %q: %w", name, err)
	}
	return table, nil
}
