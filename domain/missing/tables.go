package missing

import (
	"math"
	"strconv"
)

// Table is a flat, ordered presentation of an analysis result,
// ready for any sink (CSV file, database row set, test fixture).
type Table struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Tables renders both ranked views. Group-difference cells are rounded
// to 3 decimal places for presentation; the row structs keep full precision.
func (r *GroupDifferenceResult) Tables() []Table {
	return []Table{
		rankedToTable(r.ByPValue, true),
		rankedToTable(r.BySignificance, true),
	}
}

func rankedToTable(t RankedTable, round bool) Table {
	header := append([]string{"feature"}, t.Groups...)
	header = append(header, "p_value", "chi2_statistic", "max_group_difference", "significance_score")

	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, 0, len(header))
		cells = append(cells, row.Feature)
		for _, g := range t.Groups {
			cells = append(cells, formatCell(row.GroupPctMissing[g], round))
		}
		cells = append(cells,
			formatCell(row.PValue, round),
			formatCell(row.Chi2Statistic, round),
			formatCell(row.MaxGroupDifference, round),
			formatCell(row.SignificanceScore, round),
		)
		rows = append(rows, cells)
	}
	return Table{Name: t.Name, Header: header, Rows: rows}
}

// Table renders the correlation matrix with column names on both axes
func (m CorrelationMatrix) Table() Table {
	header := append([]string{""}, m.Columns...)
	rows := make([][]string, 0, len(m.Columns))
	for i, col := range m.Columns {
		cells := make([]string, 0, len(header))
		cells = append(cells, col)
		for j := range m.Columns {
			cells = append(cells, formatCell(m.Values[i][j], false))
		}
		rows = append(rows, cells)
	}
	return Table{Name: "missing_linear_correlations", Header: header, Rows: rows}
}

// PairwiseTable renders the pairwise chi-square rows
func PairwiseTable(rows []PairwiseAssociation) Table {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Variable1,
			r.Variable2,
			formatCell(r.Chi2Statistic, false),
			formatCell(r.PValue, false),
		})
	}
	return Table{
		Name:   "missing_nonlinear_relationships",
		Header: []string{"variable1", "variable2", "chi2_statistic", "p_value"},
		Rows:   out,
	}
}

// OutcomeTable renders the missingness-outcome rows
func OutcomeTable(rows []OutcomeAssociation) Table {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Variable,
			formatCell(r.TimeDiffPValue, false),
			formatCell(r.EventDiffPValue, false),
			formatCell(r.MissingEventRate, false),
			formatCell(r.PresentEventRate, false),
		})
	}
	return Table{
		Name:   "missing_survival_relationship",
		Header: []string{"variable", "time_diff_pvalue", "event_diff_pvalue", "missing_event_rate", "present_event_rate"},
		Rows:   out,
	}
}

// formatCell renders a float cell; NaN becomes an empty cell
func formatCell(v float64, round bool) string {
	if math.IsNaN(v) {
		return ""
	}
	if round {
		v = math.Round(v*1000) / 1000
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
