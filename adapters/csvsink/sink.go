package csvsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gomiss/domain/core"
	"gomiss/domain/missing"
)

// Sink writes each analysis table as a CSV file under a fixed directory,
// one file per table name.
type Sink struct {
	dir string
}

// NewSink creates a CSV sink rooted at dir
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// WriteTable writes table as <dir>/<name>.csv, creating the directory
// if needed. Existing files are overwritten.
func (s *Sink) WriteTable(ctx context.Context, runID core.RunID, table missing.Table) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.dir, table.Name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(table.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	log.Printf("[CSVSink] Wrote %s (%d rows, run %s)", path, len(table.Rows), runID.String())
	return nil
}
