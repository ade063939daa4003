// Package detection runs the pattern detection pipeline:
// candles, pivots, levels and trendlines, matched patterns, features, scored patterns.
package detection

import (
	"context"
	"fmt"
	"sort"

	"patternScout/internal/detection/extrema"
	"patternScout/internal/detection/features"
	"patternScout/internal/detection/levels"
	"patternScout/internal/detection/patterns"
	"patternScout/internal/detection/scoring"
	"patternScout/internal/detection/trendlines"
	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// Request is one detection call.
type Request struct {
	Symbol   string // Used for labeling only
	Interval domain.Interval
	Candles  []domain.Candle
}

// Analysis is the full intermediate state of a detection call.
type Analysis struct {
	Pivots     []domain.Pivot
	Support    []domain.Level
	Resistance []domain.Level
	Trendlines []domain.Trendline
	Patterns   []domain.Pattern // Scored patterns at or above MinConfidence
	Rejected   int              // Candidates dropped for low confidence
}

// Detector is read-only after construction and safe for concurrent use.
type Detector struct {
	cfg    Config
	scorer *scoring.Scorer
	logger ports.Logger
}

// NewDetector creates a detector. The scorer carries the shared model source and record sink.
func NewDetector(cfg Config, scorer *scoring.Scorer, logger ports.Logger) (*Detector, error) {
	if scorer == nil || logger == nil {
		return nil, fmt.Errorf("%w: missing required dependencies for Detector", ports.ErrConfigurationError)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrConfigurationError, err)
	}
	return &Detector{cfg: cfg, scorer: scorer, logger: logger}, nil
}

// Config returns the detector configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect validates the request and returns the serialized result shape.
// Too few candles produce an empty result, not an error.
func (d *Detector) Detect(ctx context.Context, req Request) (*domain.DetectionResult, error) {
	a, err := d.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	return BuildResult(req.Symbol, req.Interval, a), nil
}

// Analyze runs the pipeline and returns every intermediate product.
func (d *Detector) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	candles := req.Candles
	n := len(candles)

	pivots := extrema.ExtractAll(candles, d.cfg.PivotRadius)
	lvls := levels.Detect(pivots, d.cfg.Levels, n)
	support, resistance := levels.Split(lvls)
	lines := trendlines.BuildAll(candles, pivots, d.cfg.Trendlines)

	candidates := patterns.Match(patterns.Input{
		Candles:    candles,
		Pivots:     pivots,
		Support:    support,
		Resistance: resistance,
		Trendlines: lines,
	}, d.cfg.Patterns)

	subj := scoring.Subject{Symbol: req.Symbol, Interval: req.Interval}
	kept := make([]domain.Pattern, 0, len(candidates))
	rejected := 0
	for _, p := range candidates {
		p.Features = features.Build(candles, p, d.cfg.Features)
		p = d.scorer.ScorePattern(ctx, subj, p)
		if p.Confidence < d.cfg.MinConfidence {
			rejected++
			continue
		}
		kept = append(kept, p)
	}

	d.logger.Debug(ctx, "detection complete", ports.Fields{
		"symbol":     req.Symbol,
		"interval":   string(req.Interval),
		"candles":    n,
		"pivots":     len(pivots),
		"levels":     len(lvls),
		"trendlines": len(lines),
		"patterns":   len(kept),
		"rejected":   rejected,
	})

	return &Analysis{
		Pivots:     pivots,
		Support:    support,
		Resistance: resistance,
		Trendlines: lines,
		Patterns:   kept,
		Rejected:   rejected,
	}, nil
}

// BuildResult converts an analysis into the stable output shape.
func BuildResult(symbol string, interval domain.Interval, a *Analysis) *domain.DetectionResult {
	res := domain.EmptyResult(symbol, interval)
	if a == nil {
		return res
	}
	for _, p := range a.Patterns {
		res.Detected = append(res.Detected, domain.DetectedPattern{
			Type:        p.Type,
			StartCandle: p.StartIndex,
			EndCandle:   p.EndIndex,
			Confidence:  p.Confidence,
			Description: p.Description,
		})
	}
	sort.SliceStable(res.Detected, func(i, j int) bool {
		x, y := res.Detected[i], res.Detected[j]
		if x.StartCandle != y.StartCandle {
			return x.StartCandle < y.StartCandle
		}
		if x.EndCandle != y.EndCandle {
			return x.EndCandle < y.EndCandle
		}
		return x.Type < y.Type
	})
	for _, l := range a.Support {
		res.ActiveLevels.Support = append(res.ActiveLevels.Support, l.Price)
	}
	for _, l := range a.Resistance {
		res.ActiveLevels.Resistance = append(res.ActiveLevels.Resistance, l.Price)
	}
	for _, t := range a.Trendlines {
		touches := make([]int, len(t.TouchIndices))
		copy(touches, t.TouchIndices)
		res.Trendlines = append(res.Trendlines, domain.TrendlineOut{
			Kind:         t.Kind,
			Slope:        t.Slope,
			Intercept:    t.Intercept,
			TouchIndices: touches,
		})
	}
	return res
}
