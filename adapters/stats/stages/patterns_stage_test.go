package stages

import (
	"math"
	"reflect"
	"testing"

	"gomiss/domain/frame"
	"gomiss/domain/missing"
)

// patternsFrame builds four columns: a and b perfectly co-missing,
// c fully observed, d missing on an unrelated schedule.
func patternsFrame(t *testing.T) *frame.Frame {
	t.Helper()

	n := 60
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i], b[i], c[i], d[i] = float64(i), float64(i), float64(i), float64(i)
		if i%2 == 0 {
			a[i] = math.NaN()
			b[i] = math.NaN()
		}
		if i%3 == 0 {
			d[i] = math.NaN()
		}
	}

	f := frame.New(n)
	if err := f.AddNumeric("a", a); err != nil {
		t.Fatal(err)
	}
	if err := f.AddNumeric("b", b); err != nil {
		t.Fatal(err)
	}
	if err := f.AddNumeric("c", c); err != nil {
		t.Fatal(err)
	}
	if err := f.AddNumeric("d", d); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestPatternsStage_CorrelationMatrix(t *testing.T) {
	stage := NewPatternsStage()
	f := patternsFrame(t)

	matrix, _, _, err := stage.Execute(f)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	idx := make(map[string]int)
	for i, col := range matrix.Columns {
		idx[col] = i
	}

	t.Run("perfectly co-missing pair", func(t *testing.T) {
		if r := matrix.At(idx["a"], idx["b"]); math.Abs(r-1.0) > 1e-9 {
			t.Errorf("corr(a,b) = %v, want 1.0", r)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		for i := range matrix.Columns {
			for j := range matrix.Columns {
				a, b := matrix.At(i, j), matrix.At(j, i)
				if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
					t.Errorf("matrix not symmetric at (%d,%d): %v vs %v", i, j, a, b)
				}
			}
		}
	})

	t.Run("diagonal", func(t *testing.T) {
		if v := matrix.At(idx["a"], idx["a"]); v != 1.0 {
			t.Errorf("diag(a) = %v, want 1.0", v)
		}
		// A never-missing column has a zero-variance indicator: NaN, not 1.0
		if v := matrix.At(idx["c"], idx["c"]); !math.IsNaN(v) {
			t.Errorf("diag(c) = %v, want NaN", v)
		}
	})
}

func TestPatternsStage_PairwiseRows(t *testing.T) {
	stage := NewPatternsStage()
	f := patternsFrame(t)

	_, pairwise, skips, err := stage.Execute(f)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	t.Run("exactly C(C-1)/2 rows", func(t *testing.T) {
		if len(pairwise) != 6 {
			t.Errorf("got %d pairwise rows, want 6", len(pairwise))
		}
		seen := make(map[string]bool)
		for _, row := range pairwise {
			if row.Variable1 >= row.Variable2 {
				t.Errorf("pair not in lexical order: %q, %q", row.Variable1, row.Variable2)
			}
			key := row.Variable1 + "|" + row.Variable2
			if seen[key] {
				t.Errorf("duplicate pair %s", key)
			}
			seen[key] = true
		}
	})

	t.Run("co-missing pair has near-zero p-value", func(t *testing.T) {
		for _, row := range pairwise {
			if row.Variable1 == "a" && row.Variable2 == "b" {
				if row.PValue > 1e-10 {
					t.Errorf("p(a,b) = %v, want ~0", row.PValue)
				}
				return
			}
		}
		t.Error("pair (a,b) not found")
	})

	t.Run("pairs with constant indicator are NaN-marked, not dropped", func(t *testing.T) {
		skippedPairs := 0
		for _, row := range pairwise {
			if row.Variable1 == "c" || row.Variable2 == "c" {
				if !row.Skipped || row.SkipReason != missing.SkipDegenerateTable {
					t.Errorf("pair (%s,%s) should be skipped as degenerate", row.Variable1, row.Variable2)
				}
				if !math.IsNaN(row.PValue) || !math.IsNaN(row.Chi2Statistic) {
					t.Errorf("skipped pair (%s,%s) should carry NaN statistics", row.Variable1, row.Variable2)
				}
				skippedPairs++
			}
		}
		if skippedPairs != 3 {
			t.Errorf("got %d skipped pairs, want 3", skippedPairs)
		}
		if len(skips) != 3 {
			t.Errorf("got %d skip diagnostics, want 3", len(skips))
		}
	})

	t.Run("p-values in range", func(t *testing.T) {
		for _, row := range pairwise {
			if row.Skipped {
				continue
			}
			if row.PValue < 0 || row.PValue > 1 {
				t.Errorf("p(%s,%s) = %v out of [0,1]", row.Variable1, row.Variable2, row.PValue)
			}
		}
	})
}

func TestPatternsStage_Idempotent(t *testing.T) {
	stage := NewPatternsStage()
	f := patternsFrame(t)

	m1, p1, _, err := stage.Execute(f)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	m2, p2, _, err := stage.Execute(f)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !reflect.DeepEqual(m1.Table(), m2.Table()) {
		t.Error("correlation matrices differ across runs")
	}
	if !reflect.DeepEqual(missing.PairwiseTable(p1), missing.PairwiseTable(p2)) {
		t.Error("pairwise tables differ across runs")
	}
}
