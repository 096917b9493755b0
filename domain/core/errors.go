package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors: the caller's dataset or configuration is wrong.
	// These are fatal and abort the whole analyzer call.
	ErrColumnNotFound   = errors.New("column not found")
	ErrLengthMismatch   = errors.New("sequence length mismatch")
	ErrEmptyFeatureList = errors.New("empty feature list")
	ErrEmptyDataset     = errors.New("dataset has no rows")
	ErrMissingGroup     = errors.New("group column contains missing values")

	// Degenerate-statistic errors: a single table, feature, or subset lacks
	// the variation the requested test needs. Reported per item, the pass
	// continues.
	ErrDegenerateTable = errors.New("contingency table has fewer than 2 categories per margin")
	ErrEmptySubset     = errors.New("subset has no observations")
	ErrEmptyGroup      = errors.New("group has zero rows")
	ErrZeroVariance    = errors.New("zero variance in observations")
)

// Error constructors with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

func NewLengthMismatchError(lenA, lenB int) error {
	return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, lenA, lenB)
}

func NewDegenerateTableError(rows, cols int) error {
	return fmt.Errorf("%w: %dx%d", ErrDegenerateTable, rows, cols)
}

func NewEmptySubsetError(subset string) error {
	return fmt.Errorf("%w: %s", ErrEmptySubset, subset)
}

// Error checking helpers

// IsInputError reports whether err is a fatal caller-side error.
func IsInputError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrEmptyFeatureList) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrMissingGroup)
}

// IsDegenerateError reports whether err is a per-item statistical
// degeneracy rather than a caller mistake.
func IsDegenerateError(err error) bool {
	return errors.Is(err, ErrDegenerateTable) ||
		errors.Is(err, ErrEmptySubset) ||
		errors.Is(err, ErrEmptyGroup) ||
		errors.Is(err, ErrZeroVariance)
}
