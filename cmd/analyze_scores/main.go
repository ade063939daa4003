// Command analyze_scores summarizes the stored score records by pattern type.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"patternScout/config"
	"patternScout/internal/adapters/logger"
	"patternScout/internal/adapters/sqlite"
	"patternScout/internal/domain"
)

func main() {
	typeFlag := flag.String("type", "", "list recent records of this pattern type")
	limit := flag.Int("limit", 20, "records listed with -type")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(os.Stderr, cfg.LogFormat, cfg.LogLevel, "analyze_scores")

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open score database: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	summaries, err := repo.SummaryByPatternType(ctx)
	if err != nil {
		log.Fatalf("Error summarizing score records: %v", err)
	}
	if len(summaries) == 0 {
		log.Println("No score records found. Run detect with RECORD_SCORES=true first.")
		return
	}

	// Create a tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Pattern\tRecords\tFallback%\tAvgBase\tAvgFinal\tShift\t")
	for _, s := range summaries {
		fallbackPct := 0.0
		if s.Count > 0 {
			fallbackPct = float64(s.FallbackCount) / float64(s.Count) * 100
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.2f\t%.2f\t%+.2f\t\n",
			s.PatternType,
			s.Count,
			fallbackPct,
			s.AvgBaseConfidence,
			s.AvgFinalConfidence,
			s.AvgFinalConfidence-s.AvgBaseConfidence,
		)
	}
	w.Flush()

	if *typeFlag == "" {
		return
	}
	records, err := repo.FindByPatternType(ctx, domain.PatternType(*typeFlag), *limit)
	if err != nil {
		log.Fatalf("Error loading %s records: %v", *typeFlag, err)
	}

	fmt.Printf("\n## Recent %s records\n", *typeFlag)
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Created\tSymbol\tInterval\tSpan\tBase\tFinal\tPath\tReason\t")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d-%d\t%.0f\t%.0f\t%s\t%s\t\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Symbol,
			r.Interval,
			r.StartIndex, r.EndIndex,
			r.BaseConfidence,
			r.FinalConfidence,
			r.Path,
			r.Reason,
		)
	}
	w.Flush()
}
