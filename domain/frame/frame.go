package frame

import (
	"fmt"
	"math"
	"strconv"

	"gomiss/domain/core"
)

// ColumnKind classifies how a column's values are stored
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric" // float64, NaN marks a missing cell
	KindLabel   ColumnKind = "label"   // string, "" marks a missing cell
)

// Frame is an ordered collection of named, equal-length columns.
// Analyzers treat it as read-only input; all derived state (missing
// indicators, subsets) is computed fresh per call.
type Frame struct {
	rows    int
	order   []string
	kinds   map[string]ColumnKind
	numeric map[string][]float64
	labels  map[string][]string
}

// New creates an empty frame with a fixed row count
func New(rows int) *Frame {
	return &Frame{
		rows:    rows,
		kinds:   make(map[string]ColumnKind),
		numeric: make(map[string][]float64),
		labels:  make(map[string][]string),
	}
}

// Rows returns the row count shared by every column
func (f *Frame) Rows() int {
	return f.rows
}

// Columns returns column names in insertion order
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Has reports whether a column exists
func (f *Frame) Has(name string) bool {
	_, ok := f.kinds[name]
	return ok
}

// Kind returns the storage kind of a column
func (f *Frame) Kind(name string) (ColumnKind, bool) {
	k, ok := f.kinds[name]
	return k, ok
}

// AddNumeric appends a numeric column. NaN cells are missing.
func (f *Frame) AddNumeric(name string, values []float64) error {
	if err := f.checkAdd(name, len(values)); err != nil {
		return err
	}
	col := make([]float64, len(values))
	copy(col, values)
	f.order = append(f.order, name)
	f.kinds[name] = KindNumeric
	f.numeric[name] = col
	return nil
}

// AddLabels appends a categorical column. Empty-string cells are missing.
func (f *Frame) AddLabels(name string, values []string) error {
	if err := f.checkAdd(name, len(values)); err != nil {
		return err
	}
	col := make([]string, len(values))
	copy(col, values)
	f.order = append(f.order, name)
	f.kinds[name] = KindLabel
	f.labels[name] = col
	return nil
}

func (f *Frame) checkAdd(name string, n int) error {
	if name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if f.Has(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	if n != f.rows {
		return core.NewLengthMismatchError(n, f.rows)
	}
	return nil
}

// Numeric returns the backing values of a numeric column
func (f *Frame) Numeric(name string) ([]float64, bool) {
	v, ok := f.numeric[name]
	return v, ok
}

// Labels returns the backing values of a label column
func (f *Frame) Labels(name string) ([]string, bool) {
	v, ok := f.labels[name]
	return v, ok
}

// MissingMask computes the missingness indicator for a column:
// true at row i iff the value is absent.
func (f *Frame) MissingMask(name string) ([]bool, error) {
	switch f.kinds[name] {
	case KindNumeric:
		vals := f.numeric[name]
		mask := make([]bool, len(vals))
		for i, v := range vals {
			mask[i] = math.IsNaN(v)
		}
		return mask, nil
	case KindLabel:
		vals := f.labels[name]
		mask := make([]bool, len(vals))
		for i, v := range vals {
			mask[i] = v == ""
		}
		return mask, nil
	default:
		return nil, core.NewColumnNotFoundError(name)
	}
}

// MissingCount returns the number of missing cells in a column
func (f *Frame) MissingCount(name string) (int, error) {
	mask, err := f.MissingMask(name)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range mask {
		if m {
			count++
		}
	}
	return count, nil
}

// CategoricalValues renders a column as per-row category strings,
// "" for missing cells. Numeric values use their shortest exact form,
// so 0/1 indicators become "0" and "1".
func (f *Frame) CategoricalValues(name string) ([]string, error) {
	switch f.kinds[name] {
	case KindLabel:
		vals := f.labels[name]
		out := make([]string, len(vals))
		copy(out, vals)
		return out, nil
	case KindNumeric:
		vals := f.numeric[name]
		out := make([]string, len(vals))
		for i, v := range vals {
			if math.IsNaN(v) {
				out[i] = ""
				continue
			}
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return out, nil
	default:
		return nil, core.NewColumnNotFoundError(name)
	}
}
