package stages

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"gomiss/adapters/stats/senses"
	"gomiss/domain/core"
	"gomiss/domain/frame"
	"gomiss/domain/missing"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// PatternsStage measures how missingness co-occurs across columns:
// linearly through a Pearson correlation matrix over the per-column
// missingness indicators, and non-linearly through exhaustive pairwise
// chi-square tests over the same indicators.
type PatternsStage struct {
	workers int
}

// NewPatternsStage creates a new patterns stage
func NewPatternsStage() *PatternsStage {
	return &PatternsStage{workers: runtime.GOMAXPROCS(0)}
}

// Execute computes the correlation matrix (frame column order) and one
// chi-square row per unordered column pair under lexical order, exactly
// C*(C-1)/2 rows. The pairwise loop is O(C^2) and runs as a parallel map
// over pairs; each pair's result is independent, and degenerate pairs
// keep their row with NaN statistics plus a skip diagnostic.
func (s *PatternsStage) Execute(f *frame.Frame) (missing.CorrelationMatrix, []missing.PairwiseAssociation, []missing.SkipDiagnostic, error) {
	if f.Rows() == 0 {
		return missing.CorrelationMatrix{}, nil, nil, core.ErrEmptyDataset
	}

	cols := f.Columns()
	masks := make(map[string][]bool, len(cols))
	indicators := make(map[string][]float64, len(cols))
	for _, col := range cols {
		mask, err := f.MissingMask(col)
		if err != nil {
			return missing.CorrelationMatrix{}, nil, nil, err
		}
		masks[col] = mask
		ind := make([]float64, len(mask))
		for i, m := range mask {
			if m {
				ind[i] = 1
			}
		}
		indicators[col] = ind
	}

	matrix := s.correlationMatrix(cols, indicators)

	// Lexical order over names fixes the pair orientation and avoids
	// duplicate or reflexive comparisons.
	ordered := make([]string, len(cols))
	copy(ordered, cols)
	sort.Strings(ordered)

	type pair struct{ a, b string }
	var pairs []pair
	for i := 0; i < len(ordered)-1; i++ {
		for j := i + 1; j < len(ordered); j++ {
			pairs = append(pairs, pair{a: ordered[i], b: ordered[j]})
		}
	}

	results := make([]missing.PairwiseAssociation, len(pairs))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for k, pr := range pairs {
		k, pr := k, pr
		g.Go(func() error {
			row := missing.PairwiseAssociation{
				Variable1:     pr.a,
				Variable2:     pr.b,
				Chi2Statistic: math.NaN(),
				PValue:        math.NaN(),
			}
			table, err := senses.Crosstab(
				senses.BoolCategories(masks[pr.a]),
				senses.BoolCategories(masks[pr.b]),
			)
			if err != nil {
				row.Skipped = true
				row.SkipReason = missing.SkipDegenerateTable
			} else {
				res := senses.ChiSquare(table)
				row.Chi2Statistic = res.Statistic
				row.PValue = res.PValue
			}
			results[k] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return missing.CorrelationMatrix{}, nil, nil, err
	}

	var skips []missing.SkipDiagnostic
	for _, row := range results {
		if row.Skipped {
			skips = append(skips, missing.SkipDiagnostic{
				Item:   fmt.Sprintf("%s x %s", row.Variable1, row.Variable2),
				Reason: row.SkipReason,
			})
		}
	}

	return matrix, results, skips, nil
}

// correlationMatrix fills the symmetric indicator correlation matrix.
// A constant indicator (column never or always missing) has zero
// variance; its correlations, diagonal included, are NaN rather than
// a spurious 1.0 or 0.0.
func (s *PatternsStage) correlationMatrix(cols []string, indicators map[string][]float64) missing.CorrelationMatrix {
	values := make([][]float64, len(cols))
	for i := range values {
		values[i] = make([]float64, len(cols))
	}

	for i := 0; i < len(cols); i++ {
		for j := i; j < len(cols); j++ {
			var r float64
			switch {
			case i == j && isConstant(indicators[cols[i]]):
				r = math.NaN()
			case i == j:
				r = 1.0
			default:
				r = stat.Correlation(indicators[cols[i]], indicators[cols[j]], nil)
			}
			values[i][j] = r
			values[j][i] = r
		}
	}

	return missing.CorrelationMatrix{Columns: cols, Values: values}
}

func isConstant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}
