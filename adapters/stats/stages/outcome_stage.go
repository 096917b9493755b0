package stages

import (
	"errors"
	"math"

	"gomiss/adapters/stats/senses"
	"gomiss/domain/core"
	"gomiss/domain/frame"
	"gomiss/domain/missing"

	"github.com/montanaflynn/stats"
)

// OutcomeStage links each column's missingness to the survival outcome:
// a rank-based test on event time and a chi-square test on event rates
// between the missing and present row subsets.
type OutcomeStage struct{}

// NewOutcomeStage creates a new outcome stage
func NewOutcomeStage() *OutcomeStage {
	return &OutcomeStage{}
}

// Execute emits one row per column that has at least one missing value;
// fully observed columns produce no row. A subset that is empty after
// dropping missing outcome times, or a degenerate event contingency,
// leaves the affected field NaN and adds a skip diagnostic; the pass
// always continues.
func (s *OutcomeStage) Execute(f *frame.Frame, eventColumn, timeColumn string) ([]missing.OutcomeAssociation, []missing.SkipDiagnostic, error) {
	if f.Rows() == 0 {
		return nil, nil, core.ErrEmptyDataset
	}
	events, ok := f.Numeric(eventColumn)
	if !ok {
		return nil, nil, core.NewColumnNotFoundError(eventColumn)
	}
	times, ok := f.Numeric(timeColumn)
	if !ok {
		return nil, nil, core.NewColumnNotFoundError(timeColumn)
	}

	var rows []missing.OutcomeAssociation
	var skips []missing.SkipDiagnostic

	for _, col := range f.Columns() {
		mask, err := f.MissingMask(col)
		if err != nil {
			return nil, nil, err
		}

		missingCount := 0
		for _, m := range mask {
			if m {
				missingCount++
			}
		}
		if missingCount == 0 {
			continue
		}

		row := missing.OutcomeAssociation{
			Variable:         col,
			TimeDiffPValue:   math.NaN(),
			EventDiffPValue:  math.NaN(),
			MissingEventRate: math.NaN(),
			PresentEventRate: math.NaN(),
			MissingCount:     missingCount,
			PresentCount:     len(mask) - missingCount,
		}

		// Event-time comparison: drop rows whose outcome time is itself missing.
		var missTimes, presTimes []float64
		for i, m := range mask {
			if math.IsNaN(times[i]) {
				continue
			}
			if m {
				missTimes = append(missTimes, times[i])
			} else {
				presTimes = append(presTimes, times[i])
			}
		}
		mw, err := senses.MannWhitney(missTimes, presTimes)
		if err != nil {
			skips = append(skips, missing.SkipDiagnostic{
				Item:   col,
				Reason: skipReasonFor(err),
				Detail: err.Error(),
			})
		} else {
			row.TimeDiffPValue = mw.PValue
		}

		// Event-rate comparison: crosstab of the indicator against the
		// event outcome, dropping rows whose event value is missing.
		var maskCats, eventCats []string
		var missEvents, presEvents []float64
		for i, m := range mask {
			if math.IsNaN(events[i]) {
				continue
			}
			if m {
				maskCats = append(maskCats, "true")
				missEvents = append(missEvents, events[i])
			} else {
				maskCats = append(maskCats, "false")
				presEvents = append(presEvents, events[i])
			}
			if events[i] == 0 {
				eventCats = append(eventCats, "0")
			} else {
				eventCats = append(eventCats, "1")
			}
		}
		table, err := senses.Crosstab(maskCats, eventCats)
		if err != nil {
			skips = append(skips, missing.SkipDiagnostic{
				Item:   col,
				Reason: skipReasonFor(err),
				Detail: err.Error(),
			})
		} else {
			row.EventDiffPValue = senses.ChiSquare(table).PValue
		}

		row.MissingEventRate = meanOrNaN(missEvents)
		row.PresentEventRate = meanOrNaN(presEvents)

		rows = append(rows, row)
	}

	return rows, skips, nil
}

func meanOrNaN(vals []float64) float64 {
	mean, err := stats.Mean(vals)
	if err != nil {
		return math.NaN()
	}
	return mean
}

func skipReasonFor(err error) missing.SkipReason {
	switch {
	case errors.Is(err, core.ErrEmptySubset):
		return missing.SkipEmptySubset
	case errors.Is(err, core.ErrZeroVariance):
		return missing.SkipZeroVariance
	default:
		return missing.SkipDegenerateTable
	}
}
