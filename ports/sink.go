package ports

import (
	"context"

	"gomiss/domain/core"
	"gomiss/domain/missing"
)

// ResultSink persists the structured tables produced by an analysis run.
// Implementations decide the medium (CSV files, Postgres, test fixtures);
// analyzers never perform I/O themselves.
type ResultSink interface {
	WriteTable(ctx context.Context, runID core.RunID, table missing.Table) error
}
