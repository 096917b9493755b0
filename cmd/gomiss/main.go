package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gomiss/adapters/csvsink"
	"gomiss/adapters/excel"
	"gomiss/adapters/postgres"
	"gomiss/app"
	"gomiss/domain/core"
	"gomiss/domain/missing"
	"gomiss/ports"
)

func main() {
	input := flag.String("input", "", "dataset file (.csv or .xlsx)")
	group := flag.String("group", "", "grouping column for the group-difference pass")
	features := flag.String("features", "", "comma-separated feature columns to analyze")
	event := flag.String("event", "efs", "survival event indicator column (0/1)")
	timeCol := flag.String("time", "efs_time", "event/censoring time column")
	out := flag.String("out", "results/eda", "output directory for CSV tables")
	topN := flag.Int("top", 5, "number of top significant features to report")
	flag.Parse()

	if *input == "" || *group == "" || *features == "" {
		flag.Usage()
		os.Exit(2)
	}

	// .env may provide DATABASE_URL for the optional Postgres sink
	if err := godotenv.Load(); err == nil {
		log.Printf("[gomiss] Loaded configuration from .env")
	}

	reader := excel.NewDataReader(*input)
	f, err := reader.Read()
	if err != nil {
		log.Fatalf("[gomiss] Failed to read dataset: %v", err)
	}
	log.Printf("[gomiss] Dataset loaded: %d rows, %d columns", f.Rows(), len(f.Columns()))

	ctx := context.Background()

	sinks := []ports.ResultSink{csvsink.NewSink(*out)}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			log.Fatalf("[gomiss] Failed to connect to Postgres: %v", err)
		}
		defer db.Close()
		repo := postgres.NewResultsRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("[gomiss] %v", err)
		}
		sinks = append(sinks, repo)
		log.Printf("[gomiss] Postgres sink enabled")
	}

	service := app.NewMissingnessService(fanout(sinks))

	featureList := splitList(*features)
	report, err := service.Run(ctx, app.AnalysisRequest{
		Frame:       f,
		GroupColumn: *group,
		Features:    featureList,
		EventColumn: *event,
		TimeColumn:  *timeCol,
	})
	if err != nil {
		log.Fatalf("[gomiss] Analysis failed: %v", err)
	}

	log.Printf("[gomiss] Run %s finished in %dms", report.RunID.String(), report.RuntimeMs)
	if skips := report.Patterns.Skips; len(skips) > 0 {
		log.Printf("[gomiss] %d statistics skipped as degenerate", len(skips))
	}

	fmt.Printf("Top %d features by significance score:\n", *topN)
	for i, row := range report.TopSignificant(*topN) {
		fmt.Printf("  %d. %s (max_diff=%.3f, p=%.3g, score=%.3g)\n",
			i+1, row.Feature, row.MaxGroupDifference, row.PValue, row.SignificanceScore)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// fanout writes every table to each configured sink
func fanout(sinks []ports.ResultSink) ports.ResultSink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return fanoutSink(sinks)
}

type fanoutSink []ports.ResultSink

func (f fanoutSink) WriteTable(ctx context.Context, runID core.RunID, table missing.Table) error {
	for _, s := range f {
		if err := s.WriteTable(ctx, runID, table); err != nil {
			return err
		}
	}
	return nil
}
