package stages

import (
	"fmt"
	"math"
	"sort"

	"gomiss/adapters/stats/senses"
	"gomiss/domain/core"
	"gomiss/domain/frame"
	"gomiss/domain/missing"
)

// epsilon guards significance_score when a p-value underflows to 0
const epsilon = 1e-10

// GroupDifferenceStage tests whether each feature's missingness rate
// differs across the levels of a grouping variable
type GroupDifferenceStage struct{}

// NewGroupDifferenceStage creates a new group-difference stage
func NewGroupDifferenceStage() *GroupDifferenceStage {
	return &GroupDifferenceStage{}
}

// Execute analyzes every feature in order and returns two ranked views
// over the same row set: ascending by p-value and descending by
// significance score. Ties keep the original feature order. Degenerate
// features (no missing values, or all missing) stay in the tables with
// NaN test fields and a skip diagnostic.
func (s *GroupDifferenceStage) Execute(f *frame.Frame, groupColumn string, features []string) (*missing.GroupDifferenceResult, error) {
	if f.Rows() == 0 {
		return nil, core.ErrEmptyDataset
	}
	if len(features) == 0 {
		return nil, core.ErrEmptyFeatureList
	}

	groupVals, err := f.CategoricalValues(groupColumn)
	if err != nil {
		return nil, err
	}
	for i, g := range groupVals {
		if g == "" {
			return nil, fmt.Errorf("%w: %q at row %d", core.ErrMissingGroup, groupColumn, i)
		}
	}

	// Validate the whole feature list before doing any work: a misnamed
	// column is a caller mistake and aborts the call.
	for _, feat := range features {
		if !f.Has(feat) {
			return nil, core.NewColumnNotFoundError(feat)
		}
	}

	groups := distinctSorted(groupVals)

	rows := make([]missing.GroupDifferenceRow, 0, len(features))
	var skips []missing.SkipDiagnostic

	for _, feat := range features {
		mask, err := f.MissingMask(feat)
		if err != nil {
			return nil, err
		}

		totals := make(map[string]int, len(groups))
		missed := make(map[string]int, len(groups))
		for i, g := range groupVals {
			totals[g]++
			if mask[i] {
				missed[g]++
			}
		}

		pct := make(map[string]float64, len(groups))
		for _, g := range groups {
			if totals[g] == 0 {
				return nil, fmt.Errorf("%w: %q for feature %q", core.ErrEmptyGroup, g, feat)
			}
			pct[g] = float64(missed[g]) / float64(totals[g]) * 100
		}

		maxPct, minPct := pct[groups[0]], pct[groups[0]]
		for _, g := range groups {
			maxPct = math.Max(maxPct, pct[g])
			minPct = math.Min(minPct, pct[g])
		}
		maxDiff := maxPct - minPct

		row := missing.GroupDifferenceRow{
			Feature:            feat,
			GroupPctMissing:    pct,
			PValue:             math.NaN(),
			Chi2Statistic:      math.NaN(),
			MaxGroupDifference: maxDiff,
			SignificanceScore:  math.NaN(),
		}

		table, err := senses.Crosstab(groupVals, senses.BoolCategories(mask))
		if err != nil {
			row.Skipped = true
			row.SkipReason = missing.SkipDegenerateTable
			skips = append(skips, missing.SkipDiagnostic{
				Item:   feat,
				Reason: missing.SkipDegenerateTable,
				Detail: err.Error(),
			})
		} else {
			res := senses.ChiSquare(table)
			row.PValue = res.PValue
			row.Chi2Statistic = res.Statistic
			row.SignificanceScore = maxDiff / (res.PValue + epsilon)
		}

		rows = append(rows, row)
	}

	byPValue := cloneRows(rows)
	sort.SliceStable(byPValue, func(i, j int) bool {
		return lessNaNLast(byPValue[i].PValue, byPValue[j].PValue)
	})

	bySignificance := cloneRows(rows)
	sort.SliceStable(bySignificance, func(i, j int) bool {
		return greaterNaNLast(bySignificance[i].SignificanceScore, bySignificance[j].SignificanceScore)
	})

	return &missing.GroupDifferenceResult{
		ByPValue: missing.RankedTable{
			Name:   fmt.Sprintf("differences_by_%s_pvalue_sorted", groupColumn),
			Groups: groups,
			Rows:   byPValue,
		},
		BySignificance: missing.RankedTable{
			Name:   fmt.Sprintf("differences_by_%s_significance_sorted", groupColumn),
			Groups: groups,
			Rows:   bySignificance,
		},
		Skips: skips,
	}, nil
}

// lessNaNLast orders a before b ascending, pushing NaN to the end
func lessNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

// greaterNaNLast orders a before b descending, pushing NaN to the end
func greaterNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

func cloneRows(rows []missing.GroupDifferenceRow) []missing.GroupDifferenceRow {
	out := make([]missing.GroupDifferenceRow, len(rows))
	copy(out, rows)
	return out
}

func distinctSorted(vals []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range vals {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
