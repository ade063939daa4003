// Command detect runs pattern detection over candle CSV files and prints JSON results.
//
//	detect -interval 1h data/ETHUSDT_1h.csv data/BTCUSDT_1h.csv
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"patternScout/config"
	"patternScout/internal/adapters/logger"
	"patternScout/internal/adapters/modelfile"
	"patternScout/internal/adapters/recorder"
	"patternScout/internal/adapters/sqlite"
	"patternScout/internal/app"
	"patternScout/internal/detection"
	"patternScout/internal/detection/scoring"
	"patternScout/internal/domain"
	"patternScout/internal/ports"
	"patternScout/internal/utils"
)

type output struct {
	Symbol string                  `json:"symbol"`
	File   string                  `json:"file"`
	Result *domain.DetectionResult `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

func main() {
	intervalFlag := flag.String("interval", "1h", "candle interval of the input files")
	symbolFlag := flag.String("symbol", "", "symbol label; defaults to the file name up to the first underscore")
	flag.Parse()
	files := flag.Args()
	if len(files) == 0 {
		log.Fatalf("usage: detect [-interval 1h] [-symbol SYM] file.csv...")
	}
	interval, ok := domain.ParseInterval(*intervalFlag)
	if !ok {
		log.Fatalf("FATAL: unsupported interval %q", *intervalFlag)
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(os.Stderr, cfg.LogFormat, cfg.LogLevel, "detect")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	appLogger.Info(ctx, "Logger initialized", ports.Fields{"level": cfg.LogLevel.String()})

	// 3. Score record sink (optional)
	var sink ports.ScoreRecordSink
	if cfg.RecordScores {
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				appLogger.Error(context.Background(), err, "Error closing database repository")
			}
		}()
		rec, err := recorder.NewAsync(repo, appLogger, recorder.Config{Buffer: cfg.RecordBuffer})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize score recorder: %v", err)
		}
		rec.Start(ctx)
		defer func() {
			if err := rec.Close(context.Background()); err != nil {
				appLogger.Error(context.Background(), err, "Error flushing score records")
			}
			appLogger.Info(context.Background(), "Score recorder closed", ports.Fields{
				"written": rec.Written(),
				"dropped": rec.Dropped(),
			})
		}()
		sink = rec
	}

	// 4. Confidence model (optional, loaded on first use)
	var source *scoring.ModelSource
	if cfg.ModelPath != "" {
		source = scoring.NewModelSource(modelfile.Loader(cfg.ModelPath))
	}

	// 5. Detector and service
	detector, err := detection.NewDetector(cfg.Detection(), scoring.NewScorer(source, sink, appLogger), appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize detector: %v", err)
	}
	svc, err := app.NewDetectionService(cfg, appLogger, detector)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize detection service: %v", err)
	}

	// 6. Load inputs and run
	outputs := make([]output, len(files))
	var reqs []detection.Request
	var reqFile []int
	for i, file := range files {
		symbol := *symbolFlag
		if symbol == "" {
			symbol = symbolFromFile(file)
		}
		outputs[i] = output{Symbol: symbol, File: file}
		candles, err := utils.ReadCandlesFromCSV(file)
		if err != nil {
			appLogger.Error(ctx, err, "Error loading candles", ports.Fields{"file": file})
			outputs[i].Error = err.Error()
			continue
		}
		reqs = append(reqs, detection.Request{Symbol: symbol, Interval: interval, Candles: candles})
		reqFile = append(reqFile, i)
	}

	failed := 0
	for j, item := range svc.DetectBatch(ctx, reqs) {
		o := &outputs[reqFile[j]]
		if item.Err != nil {
			o.Error = item.Err.Error()
			failed++
			continue
		}
		o.Result = item.Result
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outputs); err != nil {
		log.Fatalf("FATAL: Failed to write results: %v", err)
	}
	if failed > 0 {
		appLogger.Warn(ctx, "Some inputs failed", ports.Fields{"failed": failed, "total": len(files)})
	}
}

func symbolFromFile(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.Index(base, "_"); i > 0 {
		return base[:i]
	}
	return base
}
