package stages

import (
	"errors"
	"math"
	"testing"

	"gomiss/domain/core"
	"gomiss/domain/frame"
	"gomiss/domain/missing"
)

// outcomeFrame builds a survival frame where X's missing rows have
// systematically larger event times and higher event rates.
func outcomeFrame(t *testing.T) *frame.Frame {
	t.Helper()

	n := 60
	events := make([]float64, n)
	times := make([]float64, n)
	x := make([]float64, n)
	full := make([]float64, n)
	allMiss := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < 15 || (i >= 20 && i < 30) {
			events[i] = 1
		}
		times[i] = float64(i)
		x[i] = float64(i)
		full[i] = float64(i)
		allMiss[i] = math.NaN()
		if i < 20 {
			x[i] = math.NaN()
			times[i] = 1000 + float64(i)
		}
	}

	f := frame.New(n)
	if err := f.AddNumeric("efs", events); err != nil {
		t.Fatal(err)
	}
	if err := f.AddNumeric("efs_time", times); err != nil {
		t.Fatal(err)
	}
	if err := f.AddNumeric("X", x); err != nil {
		t.Fatal(err)
	}
	if err := f.AddNumeric("full", full); err != nil {
		t.Fatal(err)
	}
	if err := f.AddNumeric("all_missing", allMiss); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestOutcomeStage_Execute(t *testing.T) {
	stage := NewOutcomeStage()
	f := outcomeFrame(t)

	rows, skips, err := stage.Execute(f, "efs", "efs_time")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	byVar := make(map[string]missing.OutcomeAssociation)
	for _, row := range rows {
		byVar[row.Variable] = row
	}

	t.Run("fully observed columns produce no row", func(t *testing.T) {
		for _, name := range []string{"efs", "efs_time", "full"} {
			if _, ok := byVar[name]; ok {
				t.Errorf("column %q has no missing values but emitted a row", name)
			}
		}
		if len(rows) != 2 {
			t.Errorf("got %d rows, want 2 (X and all_missing)", len(rows))
		}
	})

	t.Run("time shift detected", func(t *testing.T) {
		row, ok := byVar["X"]
		if !ok {
			t.Fatal("no row for X")
		}
		if row.TimeDiffPValue > 0.001 {
			t.Errorf("time_diff_pvalue = %v, want < 0.001", row.TimeDiffPValue)
		}
		if row.MissingCount != 20 || row.PresentCount != 40 {
			t.Errorf("counts = %d/%d, want 20/40", row.MissingCount, row.PresentCount)
		}
	})

	t.Run("event rates", func(t *testing.T) {
		row := byVar["X"]
		if math.Abs(row.MissingEventRate-0.75) > 1e-9 {
			t.Errorf("missing_event_rate = %v, want 0.75", row.MissingEventRate)
		}
		if math.Abs(row.PresentEventRate-0.25) > 1e-9 {
			t.Errorf("present_event_rate = %v, want 0.25", row.PresentEventRate)
		}
		if row.EventDiffPValue < 0 || row.EventDiffPValue > 1 {
			t.Errorf("event_diff_pvalue = %v out of [0,1]", row.EventDiffPValue)
		}
	})

	t.Run("all-missing column reported, not fatal", func(t *testing.T) {
		row, ok := byVar["all_missing"]
		if !ok {
			t.Fatal("no row for all_missing")
		}
		if !math.IsNaN(row.TimeDiffPValue) {
			t.Errorf("time_diff_pvalue = %v, want NaN for empty present subset", row.TimeDiffPValue)
		}
		if !math.IsNaN(row.PresentEventRate) {
			t.Errorf("present_event_rate = %v, want NaN", row.PresentEventRate)
		}

		var found bool
		for _, skip := range skips {
			if skip.Item == "all_missing" && skip.Reason == missing.SkipEmptySubset {
				found = true
			}
		}
		if !found {
			t.Error("expected an EMPTY_SUBSET diagnostic for all_missing")
		}
	})
}

func TestOutcomeStage_InputErrors(t *testing.T) {
	stage := NewOutcomeStage()
	f := outcomeFrame(t)

	t.Run("unknown event column", func(t *testing.T) {
		_, _, err := stage.Execute(f, "nope", "efs_time")
		if !errors.Is(err, core.ErrColumnNotFound) {
			t.Errorf("expected column-not-found, got: %v", err)
		}
	})

	t.Run("unknown time column", func(t *testing.T) {
		_, _, err := stage.Execute(f, "efs", "nope")
		if !errors.Is(err, core.ErrColumnNotFound) {
			t.Errorf("expected column-not-found, got: %v", err)
		}
	})
}
