package missing

import (
	"math"
	"testing"
)

func TestGroupDifferenceResultTables(t *testing.T) {
	result := &GroupDifferenceResult{
		ByPValue: RankedTable{
			Name:   "differences_by_group_pvalue_sorted",
			Groups: []string{"A", "B"},
			Rows: []GroupDifferenceRow{
				{
					Feature:            "x",
					GroupPctMissing:    map[string]float64{"A": 40, "B": 10},
					PValue:             0.00012345,
					Chi2Statistic:      24,
					MaxGroupDifference: 30,
					SignificanceScore:  12345.678912,
				},
				{
					Feature:            "y",
					GroupPctMissing:    map[string]float64{"A": 0, "B": 0},
					PValue:             math.NaN(),
					Chi2Statistic:      math.NaN(),
					MaxGroupDifference: 0,
					SignificanceScore:  math.NaN(),
					Skipped:            true,
					SkipReason:         SkipDegenerateTable,
				},
			},
		},
		BySignificance: RankedTable{
			Name:   "differences_by_group_significance_sorted",
			Groups: []string{"A", "B"},
		},
	}

	tables := result.Tables()
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	table := tables[0]
	if table.Name != "differences_by_group_pvalue_sorted" {
		t.Errorf("table name = %q", table.Name)
	}

	wantHeader := []string{"feature", "A", "B", "p_value", "chi2_statistic", "max_group_difference", "significance_score"}
	for i, h := range wantHeader {
		if table.Header[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, table.Header[i], h)
		}
	}

	t.Run("cells rounded to 3 decimals", func(t *testing.T) {
		row := table.Rows[0]
		if row[3] != "0" {
			t.Errorf("p_value cell = %q, want %q (rounded)", row[3], "0")
		}
		if row[6] != "12345.679" {
			t.Errorf("significance cell = %q, want %q", row[6], "12345.679")
		}
		if row[1] != "40" || row[2] != "10" {
			t.Errorf("percentage cells = %q,%q, want 40,10", row[1], row[2])
		}
	})

	t.Run("NaN renders as empty cell", func(t *testing.T) {
		row := table.Rows[1]
		if row[3] != "" || row[4] != "" || row[6] != "" {
			t.Errorf("skipped row should have empty test cells: %v", row)
		}
		if row[5] != "0" {
			t.Errorf("max difference cell = %q, want 0", row[5])
		}
	})
}

func TestCorrelationMatrixTable(t *testing.T) {
	m := CorrelationMatrix{
		Columns: []string{"a", "b"},
		Values: [][]float64{
			{1, 0.5},
			{0.5, math.NaN()},
		},
	}

	table := m.Table()
	if table.Name != "missing_linear_correlations" {
		t.Errorf("table name = %q", table.Name)
	}
	if table.Header[0] != "" || table.Header[1] != "a" || table.Header[2] != "b" {
		t.Errorf("header = %v", table.Header)
	}
	if table.Rows[0][0] != "a" || table.Rows[0][1] != "1" || table.Rows[0][2] != "0.5" {
		t.Errorf("row a = %v", table.Rows[0])
	}
	if table.Rows[1][2] != "" {
		t.Errorf("NaN diagonal cell = %q, want empty", table.Rows[1][2])
	}
}

func TestRankedTableTop(t *testing.T) {
	table := RankedTable{Rows: []GroupDifferenceRow{
		{Feature: "a"}, {Feature: "b"}, {Feature: "c"},
	}}

	top := table.Top(2)
	if len(top) != 2 || top[0].Feature != "a" || top[1].Feature != "b" {
		t.Errorf("Top(2) = %v", top)
	}
	if got := table.Top(10); len(got) != 3 {
		t.Errorf("Top beyond size should clamp, got %d rows", len(got))
	}
	if got := table.Top(0); len(got) != 0 {
		t.Errorf("Top(0) should be empty, got %d rows", len(got))
	}
}
