// Command calibrate grid-searches detection thresholds over the built-in labeled
// scenarios and, optionally, trains a confidence model from the best configuration.
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
	"patternScout/internal/adapters/modelfile"
	"patternScout/internal/detection/calibration"
	"patternScout/internal/ports"
)

func main() {
	top := flag.Int("top", 10, "ranked combinations to print")
	trainOut := flag.String("train", "", "write a model artifact trained on the best combination's detections")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(os.Stderr, cfg.LogFormat, cfg.LogLevel, "calibrate")
	ctx := context.Background()

	opt, err := calibration.NewOptimizer(calibration.OptimizerConfig{
		Base:      cfg.Detection(),
		Scenarios: calibration.DefaultScenarios(),
		ParameterRanges: []calibration.ParameterRange{
			{Name: "level_tolerance_pct", Min: 0.5, Max: 1.5, Step: 0.5},
			{Name: "volume_multiplier", Min: 1.25, Max: 2, Step: 0.25},
			{Name: "min_retracement_pct", Min: 2, Max: 4, Step: 1},
			{Name: "min_confidence", Min: 30, Max: 50, Step: 10},
		},
		Workers: cfg.Workers,
	}, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize optimizer: %v", err)
	}

	results, err := opt.Optimize(ctx)
	if err != nil {
		log.Fatalf("Calibration failed: %v", err)
	}
	if len(results) == 0 {
		log.Println("No valid parameter combination.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Rank\tScore\tHitRate\tPrecision\tFalsePos\tCleanNeg\tParameters\t")
	for i, r := range results {
		if i >= *top {
			break
		}
		m := r.Metrics
		fmt.Fprintf(w, "%d\t%.3f\t%.2f\t%.2f\t%d\t%d/%d\t%s\t\n",
			i+1, r.Score, m.HitRate, m.Precision, m.FalsePositives, m.CleanNegatives, m.Negatives, r.Key())
	}
	w.Flush()

	fmt.Println("\n## Best combination by scenario")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	fmt.Fprintln(w, "Scenario\tExpected\tDetected\tHits\tFalsePos\t")
	for _, o := range results[0].Metrics.Outcomes {
		fmt.Fprintf(w, "%s\t%v\t%v\t%d\t%d\t\n", o.Name, o.Expected, o.Detected, o.Hits, o.FalsePositives)
	}
	w.Flush()

	if *trainOut == "" {
		return
	}
	samples := results[0].Metrics.Samples
	examples := make([]modelfile.Example, len(samples))
	for i, s := range samples {
		examples[i] = modelfile.Example{Features: s.Features, Genuine: s.Genuine}
	}
	opts := modelfile.DefaultFitOptions()
	opts.Version = "calibrate-" + results[0].Key()
	art, err := modelfile.Fit(examples, opts)
	if err != nil {
		appLogger.Error(ctx, err, "Training skipped", ports.Fields{"samples": len(examples)})
		os.Exit(1)
	}
	if err := modelfile.Write(*trainOut, art); err != nil {
		log.Fatalf("FATAL: Failed to write model artifact: %v", err)
	}
	appLogger.Info(ctx, "Model artifact written", ports.Fields{"path": *trainOut, "samples": len(examples)})
}
