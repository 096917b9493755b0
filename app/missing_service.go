package app

import (
	"context"
	"fmt"
	"time"

	"gomiss/adapters/stats/stages"
	"gomiss/domain/core"
	"gomiss/domain/frame"
	"gomiss/domain/missing"
	"gomiss/internal/overview"
	"gomiss/ports"
)

// MissingnessService orchestrates the missing-data analysis stages over
// a shared frame and emits the resulting tables to a sink. Each call is
// a pure function of its inputs aside from sink writes.
type MissingnessService struct {
	groupStage    *stages.GroupDifferenceStage
	patternsStage *stages.PatternsStage
	outcomeStage  *stages.OutcomeStage
	sink          ports.ResultSink
}

// AnalysisRequest defines the inputs for a full analysis run
type AnalysisRequest struct {
	Frame       *frame.Frame
	GroupColumn string
	Features    []string // explicit ordered feature list for the group pass
	EventColumn string   // survival event indicator (0/1)
	TimeColumn  string   // event/censoring time
}

// AnalysisReport is the complete output of one run
type AnalysisReport struct {
	RunID            core.RunID                      `json:"run_id"`
	GroupDifferences *missing.GroupDifferenceResult  `json:"group_differences"`
	Patterns         *missing.PatternsResult         `json:"patterns"`
	Overview         []overview.ColumnSummary        `json:"overview"`
	RuntimeMs        int64                           `json:"runtime_ms"`
}

// TopSignificant returns the first n rows of the significance-ranked
// table, in that table's order. This is the view the top-N feature
// visualization consumes; it reads the in-memory table directly rather
// than re-parsing a written file.
func (r *AnalysisReport) TopSignificant(n int) []missing.GroupDifferenceRow {
	if r.GroupDifferences == nil {
		return nil
	}
	return r.GroupDifferences.BySignificance.Top(n)
}

// NewMissingnessService creates the service. A nil sink disables persistence.
func NewMissingnessService(sink ports.ResultSink) *MissingnessService {
	return &MissingnessService{
		groupStage:    stages.NewGroupDifferenceStage(),
		patternsStage: stages.NewPatternsStage(),
		outcomeStage:  stages.NewOutcomeStage(),
		sink:          sink,
	}
}

// AnalyzeGroupDifferences runs the group-difference pass alone
func (s *MissingnessService) AnalyzeGroupDifferences(ctx context.Context, f *frame.Frame, groupColumn string, features []string) (*missing.GroupDifferenceResult, error) {
	result, err := s.groupStage.Execute(f, groupColumn, features)
	if err != nil {
		return nil, fmt.Errorf("group-difference analysis failed: %w", err)
	}
	runID := core.RunID(core.NewID())
	for _, table := range result.Tables() {
		if err := s.persist(ctx, runID, table); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// AnalyzeMissingPatterns runs the co-occurrence and outcome-linkage passes
func (s *MissingnessService) AnalyzeMissingPatterns(ctx context.Context, f *frame.Frame, eventColumn, timeColumn string) (*missing.PatternsResult, error) {
	matrix, pairwise, skips, err := s.patternsStage.Execute(f)
	if err != nil {
		return nil, fmt.Errorf("missing-pattern analysis failed: %w", err)
	}
	outcomeRows, outcomeSkips, err := s.outcomeStage.Execute(f, eventColumn, timeColumn)
	if err != nil {
		return nil, fmt.Errorf("outcome analysis failed: %w", err)
	}

	result := &missing.PatternsResult{
		Correlations: matrix,
		Pairwise:     pairwise,
		Outcome:      outcomeRows,
		Skips:        append(skips, outcomeSkips...),
	}

	runID := core.RunID(core.NewID())
	for _, table := range []missing.Table{
		matrix.Table(),
		missing.PairwiseTable(pairwise),
		missing.OutcomeTable(outcomeRows),
	} {
		if err := s.persist(ctx, runID, table); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Run executes every stage against one frame and persists all tables
// under a single run ID.
func (s *MissingnessService) Run(ctx context.Context, req AnalysisRequest) (*AnalysisReport, error) {
	start := time.Now()
	runID := core.RunID(core.NewID())

	groupResult, err := s.groupStage.Execute(req.Frame, req.GroupColumn, req.Features)
	if err != nil {
		return nil, fmt.Errorf("group-difference analysis failed: %w", err)
	}

	matrix, pairwise, skips, err := s.patternsStage.Execute(req.Frame)
	if err != nil {
		return nil, fmt.Errorf("missing-pattern analysis failed: %w", err)
	}

	outcomeRows, outcomeSkips, err := s.outcomeStage.Execute(req.Frame, req.EventColumn, req.TimeColumn)
	if err != nil {
		return nil, fmt.Errorf("outcome analysis failed: %w", err)
	}

	summaries := overview.Summarize(req.Frame)

	report := &AnalysisReport{
		RunID:            runID,
		GroupDifferences: groupResult,
		Patterns: &missing.PatternsResult{
			Correlations: matrix,
			Pairwise:     pairwise,
			Outcome:      outcomeRows,
			Skips:        append(skips, outcomeSkips...),
		},
		Overview:  summaries,
		RuntimeMs: time.Since(start).Milliseconds(),
	}

	tables := groupResult.Tables()
	tables = append(tables,
		matrix.Table(),
		missing.PairwiseTable(pairwise),
		missing.OutcomeTable(outcomeRows),
		overview.Table(summaries),
	)
	for _, table := range tables {
		if err := s.persist(ctx, runID, table); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (s *MissingnessService) persist(ctx context.Context, runID core.RunID, table missing.Table) error {
	if s.sink == nil {
		return nil
	}
	if err := s.sink.WriteTable(ctx, runID, table); err != nil {
		return fmt.Errorf("failed to persist table %q: %w", table.Name, err)
	}
	return nil
}
