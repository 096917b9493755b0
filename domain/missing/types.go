package missing

// SkipReason represents structured reasons for skipping a statistic
type SkipReason string

const (
	SkipDegenerateTable SkipReason = "DEGENERATE_TABLE" // <2 categories on a contingency margin
	SkipEmptySubset     SkipReason = "EMPTY_SUBSET"     // missing/present subset empty after dropping missing outcomes
	SkipZeroVariance    SkipReason = "ZERO_VARIANCE"    // all observations tied
)

// SkipDiagnostic records why a feature, pair, or subset statistic
// could not be computed. Collected alongside results, never fatal.
type SkipDiagnostic struct {
	Item   string     `json:"item"` // feature name or "a x b" pair
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// GroupDifferenceRow holds the statistics for one analyzed feature.
// Float fields carry full precision; presentation rounding is a sink concern.
// A Skipped row keeps its percentages but carries NaN test fields.
type GroupDifferenceRow struct {
	Feature            string             `json:"feature"`
	GroupPctMissing    map[string]float64 `json:"group_pct_missing"` // group value -> percent missing [0,100]
	PValue             float64            `json:"p_value"`
	Chi2Statistic      float64            `json:"chi2_statistic"`
	MaxGroupDifference float64            `json:"max_group_difference"`
	SignificanceScore  float64            `json:"significance_score"`
	Skipped            bool               `json:"skipped"`
	SkipReason         SkipReason         `json:"skip_reason,omitempty"`
}

// RankedTable is one ordered view over the group-difference rows
type RankedTable struct {
	Name   string               `json:"name"`
	Groups []string             `json:"groups"` // ordered group values (column headers)
	Rows   []GroupDifferenceRow `json:"rows"`
}

// Top returns the first n rows in this table's order. The significance-ranked
// view feeds the top-N visualization consumer directly.
func (t RankedTable) Top(n int) []GroupDifferenceRow {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([]GroupDifferenceRow, n)
	copy(out, t.Rows[:n])
	return out
}

// GroupDifferenceResult bundles the two ranked views over the same row set
type GroupDifferenceResult struct {
	ByPValue       RankedTable      `json:"by_p_value"`
	BySignificance RankedTable      `json:"by_significance"`
	Skips          []SkipDiagnostic `json:"skips,omitempty"`
}

// CorrelationMatrix holds pairwise Pearson correlations over the
// per-column missingness indicators. Symmetric; the diagonal is 1.0
// for non-constant indicators and NaN when the indicator has zero
// variance (a column that is never or always missing).
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// At returns the correlation between indicator i and indicator j
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// PairwiseAssociation is one chi-square test between two columns'
// missingness indicators. Every unordered pair is emitted exactly once;
// degenerate pairs keep their row with NaN statistics and a reason.
type PairwiseAssociation struct {
	Variable1     string     `json:"variable1"`
	Variable2     string     `json:"variable2"`
	Chi2Statistic float64    `json:"chi2_statistic"`
	PValue        float64    `json:"p_value"`
	Skipped       bool       `json:"skipped"`
	SkipReason    SkipReason `json:"skip_reason,omitempty"`
}

// OutcomeAssociation links one column's missingness to the survival
// outcome: a rank test on event time and a chi-square on event rates
// between the missing and present row subsets.
type OutcomeAssociation struct {
	Variable         string  `json:"variable"`
	TimeDiffPValue   float64 `json:"time_diff_pvalue"`
	EventDiffPValue  float64 `json:"event_diff_pvalue"`
	MissingEventRate float64 `json:"missing_event_rate"`
	PresentEventRate float64 `json:"present_event_rate"`
	MissingCount     int     `json:"missing_count"`
	PresentCount     int     `json:"present_count"`
}

// PatternsResult is the combined output of the pattern and outcome passes
type PatternsResult struct {
	Correlations CorrelationMatrix     `json:"correlations"`
	Pairwise     []PairwiseAssociation `json:"pairwise"`
	Outcome      []OutcomeAssociation  `json:"outcome"`
	Skips        []SkipDiagnostic      `json:"skips,omitempty"`
}
