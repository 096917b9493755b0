package overview

import (
	"math"
	"strconv"

	"gomiss/domain/frame"
	"gomiss/domain/missing"

	"github.com/montanaflynn/stats"
)

// ColumnSummary describes one column: how much is missing and, for
// numeric columns, the usual summary statistics.
type ColumnSummary struct {
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Rows         int     `json:"rows"`
	MissingCount int     `json:"missing_count"`
	MissingPct   float64 `json:"missing_pct"`
	Cardinality  int     `json:"cardinality"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Q25          float64 `json:"q25"`
	Median       float64 `json:"median"`
	Q75          float64 `json:"q75"`
	Max          float64 `json:"max"`
}

// Summarize profiles every column in frame order. Numeric statistics are
// computed over observed values only; label columns get NaN statistics
// and a distinct-value count instead.
func Summarize(f *frame.Frame) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(f.Columns()))

	for _, col := range f.Columns() {
		kind, _ := f.Kind(col)
		summary := ColumnSummary{
			Name: col,
			Kind: string(kind),
			Rows: f.Rows(),
			Mean: math.NaN(), StdDev: math.NaN(),
			Min: math.NaN(), Q25: math.NaN(), Median: math.NaN(),
			Q75: math.NaN(), Max: math.NaN(),
		}

		mask, err := f.MissingMask(col)
		if err != nil {
			continue
		}
		for _, m := range mask {
			if m {
				summary.MissingCount++
			}
		}
		if f.Rows() > 0 {
			summary.MissingPct = float64(summary.MissingCount) / float64(f.Rows()) * 100
		}

		switch kind {
		case frame.KindNumeric:
			vals, _ := f.Numeric(col)
			observed := make([]float64, 0, len(vals))
			distinct := make(map[float64]struct{})
			for _, v := range vals {
				if !math.IsNaN(v) {
					observed = append(observed, v)
					distinct[v] = struct{}{}
				}
			}
			summary.Cardinality = len(distinct)
			if len(observed) > 0 {
				summary.Mean, _ = stats.Mean(observed)
				summary.StdDev, _ = stats.StandardDeviationSample(observed)
				summary.Min, _ = stats.Min(observed)
				summary.Q25, _ = stats.Percentile(observed, 25)
				summary.Median, _ = stats.Median(observed)
				summary.Q75, _ = stats.Percentile(observed, 75)
				summary.Max, _ = stats.Max(observed)
			}
		case frame.KindLabel:
			vals, _ := f.Labels(col)
			distinct := make(map[string]struct{})
			for _, v := range vals {
				if v != "" {
					distinct[v] = struct{}{}
				}
			}
			summary.Cardinality = len(distinct)
		}

		out = append(out, summary)
	}

	return out
}

// Table renders summaries for the result sink
func Table(summaries []ColumnSummary) missing.Table {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Name,
			s.Kind,
			strconv.Itoa(s.Rows),
			strconv.Itoa(s.MissingCount),
			cell(s.MissingPct),
			strconv.Itoa(s.Cardinality),
			cell(s.Mean), cell(s.StdDev),
			cell(s.Min), cell(s.Q25), cell(s.Median), cell(s.Q75), cell(s.Max),
		})
	}
	return missing.Table{
		Name: "dataset_overview",
		Header: []string{
			"column", "kind", "rows", "missing_count", "missing_pct", "cardinality",
			"mean", "std_dev", "min", "q25", "median", "q75", "max",
		},
		Rows: rows,
	}
}

func cell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
