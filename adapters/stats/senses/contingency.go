package senses

import (
	"sort"

	"gomiss/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Table is a cross-tabulation of two aligned categorical sequences,
// the input to the chi-square independence test.
type Table struct {
	RowCategories []string
	ColCategories []string
	Counts        [][]int
	Total         int
}

// Crosstab builds (row category x column category) counts from two
// sequences aligned by position. Categories are sorted for a stable
// table layout. Fails on length mismatch or when either margin has
// fewer than 2 observed categories (the chi-square test is undefined
// on a degenerate table).
func Crosstab(rowVals, colVals []string) (*Table, error) {
	if len(rowVals) != len(colVals) {
		return nil, core.NewLengthMismatchError(len(rowVals), len(colVals))
	}

	rowIdx := categoryIndex(rowVals)
	colIdx := categoryIndex(colVals)

	if len(rowIdx) < 2 || len(colIdx) < 2 {
		return nil, core.NewDegenerateTableError(len(rowIdx), len(colIdx))
	}

	t := &Table{
		RowCategories: sortedCategories(rowIdx),
		ColCategories: sortedCategories(colIdx),
		Counts:        make([][]int, len(rowIdx)),
	}
	for i := range t.Counts {
		t.Counts[i] = make([]int, len(colIdx))
	}
	for k := range rowVals {
		t.Counts[rowIdx[rowVals[k]]][colIdx[colVals[k]]]++
		t.Total++
	}
	return t, nil
}

// ChiSquareResult contains the Pearson chi-square test output
type ChiSquareResult struct {
	Statistic float64
	PValue    float64
	DF        int
}

// ChiSquare runs the Pearson chi-square independence test on a
// contingency table. No continuity correction is applied;
// df = (rows-1) * (cols-1).
func ChiSquare(t *Table) ChiSquareResult {
	rows := len(t.RowCategories)
	cols := len(t.ColCategories)

	rowTotals := make([]int, rows)
	colTotals := make([]int, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			rowTotals[i] += t.Counts[i][j]
			colTotals[j] += t.Counts[i][j]
		}
	}

	chiSq := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := float64(rowTotals[i]*colTotals[j]) / float64(t.Total)
			if expected > 0 {
				observed := float64(t.Counts[i][j])
				diff := observed - expected
				chiSq += diff * diff / expected
			}
		}
	}

	df := (rows - 1) * (cols - 1)
	dist := distuv.ChiSquared{K: float64(df)}
	pValue := 1 - dist.CDF(chiSq)
	if pValue < 0 {
		pValue = 0
	}
	if pValue > 1 {
		pValue = 1
	}

	return ChiSquareResult{Statistic: chiSq, PValue: pValue, DF: df}
}

// BoolCategories renders a boolean mask as category strings for Crosstab
func BoolCategories(mask []bool) []string {
	out := make([]string, len(mask))
	for i, m := range mask {
		if m {
			out[i] = "true"
		} else {
			out[i] = "false"
		}
	}
	return out
}

func categoryIndex(vals []string) map[string]int {
	idx := make(map[string]int)
	for _, v := range vals {
		if _, ok := idx[v]; !ok {
			idx[v] = 0
		}
	}
	for i, c := range sortedCategories(idx) {
		idx[c] = i
	}
	return idx
}

func sortedCategories(idx map[string]int) []string {
	cats := make([]string, 0, len(idx))
	for c := range idx {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}
