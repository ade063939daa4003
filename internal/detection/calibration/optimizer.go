// Package calibration grid-searches detection thresholds against labeled scenarios.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"patternScout/internal/detection"
	"patternScout/internal/ports"
)

// ErrUnknownParameter is returned for a range naming no tunable field.
var ErrUnknownParameter = errors.New("unknown calibration parameter")

// ParameterRange defines a range of values for one tunable.
type ParameterRange struct {
	Name  string
	Min   float64
	Max   float64
	Step  float64
	IsInt bool
}

type setter func(cfg *detection.Config, v float64)

var setters = map[string]setter{
	"pivot_radius":              func(c *detection.Config, v float64) { c.PivotRadius = int(v) },
	"min_confidence":            func(c *detection.Config, v float64) { c.MinConfidence = v },
	"level_tolerance_pct":       func(c *detection.Config, v float64) { c.Levels.TolerancePct = v },
	"trend_touch_tolerance_pct": func(c *detection.Config, v float64) { c.Trendlines.TouchTolerancePct = v },
	"volume_multiplier":         func(c *detection.Config, v float64) { c.Patterns.VolumeMultiplier = v },
	"confirmation_bars":         func(c *detection.Config, v float64) { c.Patterns.ConfirmationBars = int(v) },
	"min_retracement_pct":       func(c *detection.Config, v float64) { c.Patterns.MinRetracementPct = v },
	"equal_tolerance_pct":       func(c *detection.Config, v float64) { c.Patterns.EqualTolerancePct = v },
}

// Parameters lists the tunable names in sorted order.
func Parameters() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns base with every named parameter overwritten.
func Apply(base detection.Config, params map[string]float64) (detection.Config, error) {
	cfg := base
	for name, v := range params {
		set, ok := setters[name]
		if !ok {
			return cfg, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		set(&cfg, v)
	}
	return cfg, nil
}

// ScoreFunc ranks the metrics of one configuration. Higher is better.
type ScoreFunc func(m *Metrics) float64

// DefaultScoreFunction rewards hits and precision and penalizes noise on negatives.
func DefaultScoreFunction(m *Metrics) float64 {
	score := 0.5*m.HitRate + 0.4*m.Precision
	if m.Negatives > 0 {
		score += 0.1 * float64(m.CleanNegatives) / float64(m.Negatives)
	}
	return score
}

// Result is the outcome of one parameter combination.
type Result struct {
	Parameters map[string]float64
	Config     detection.Config
	Metrics    *Metrics
	Score      float64
}

// Key renders the parameters as a stable name=value list.
func (r Result) Key() string {
	names := make([]string, 0, len(r.Parameters))
	for name := range r.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, r.Parameters[name])
	}
	return strings.Join(parts, " ")
}

// OptimizerConfig holds configuration for a calibration run.
type OptimizerConfig struct {
	Base            detection.Config
	Scenarios       []Scenario
	ParameterRanges []ParameterRange
	ScoreFunction   ScoreFunc
	Workers         int // Concurrent evaluations; defaults to GOMAXPROCS
}

// Optimizer evaluates every parameter combination over the scenario set.
type Optimizer struct {
	config OptimizerConfig
	logger ports.Logger
}

// NewOptimizer validates the ranges and creates an optimizer.
func NewOptimizer(config OptimizerConfig, logger ports.Logger) (*Optimizer, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	}
	if len(config.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no calibration scenarios", ports.ErrConfigurationError)
	}
	for _, r := range config.ParameterRanges {
		if _, ok := setters[r.Name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, r.Name)
		}
		if r.Step <= 0 || r.Max < r.Min {
			return nil, fmt.Errorf("%w: range %s needs min <= max and a positive step", ports.ErrConfigurationError, r.Name)
		}
	}
	if config.ScoreFunction == nil {
		config.ScoreFunction = DefaultScoreFunction
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	return &Optimizer{config: config, logger: logger}, nil
}

// Optimize evaluates the grid and returns results best first. Combinations whose
// configuration fails validation are skipped and logged.
func (o *Optimizer) Optimize(ctx context.Context) ([]Result, error) {
	combos := o.generateParameterCombinations()
	o.logger.Info(ctx, "Starting calibration", ports.Fields{
		"combinations": len(combos),
		"scenarios":    len(o.config.Scenarios),
		"workers":      o.config.Workers,
	})

	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(combos))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.config.Workers)
	for _, params := range combos {
		params := params
		g.Go(func() error {
			cfg, err := Apply(o.config.Base, params)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				o.logger.Debug(gctx, "Skipping invalid combination", ports.Fields{"params": Result{Parameters: params}.Key()})
				return nil
			}
			m, err := Evaluate(gctx, cfg, o.config.Scenarios, o.logger)
			if err != nil {
				return err
			}
			r := Result{Parameters: params, Config: cfg, Metrics: m, Score: o.config.ScoreFunction(m)}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortResultsByScore(results)
	if len(results) > 0 {
		o.logger.Info(ctx, "Calibration complete", ports.Fields{
			"evaluated":  len(results),
			"best_score": results[0].Score,
			"best":       results[0].Key(),
		})
	}
	return results, nil
}

// generateParameterCombinations expands the ranges into their cartesian product.
// No ranges yields a single empty combination, which evaluates the base config.
func (o *Optimizer) generateParameterCombinations() []map[string]float64 {
	var combinations []map[string]float64
	current := make(map[string]float64)

	var generate func(int)
	generate = func(paramIndex int) {
		if paramIndex == len(o.config.ParameterRanges) {
			combination := make(map[string]float64, len(current))
			for k, v := range current {
				combination[k] = v
			}
			combinations = append(combinations, combination)
			return
		}

		param := o.config.ParameterRanges[paramIndex]
		steps := int(math.Floor((param.Max-param.Min)/param.Step + 1e-9))
		for i := 0; i <= steps; i++ {
			value := param.Min + float64(i)*param.Step
			if param.IsInt {
				value = math.Round(value)
			}
			current[param.Name] = value
			generate(paramIndex + 1)
		}
	}

	generate(0)
	return combinations
}

// sortResultsByScore orders by score descending, ties broken by parameter key.
func sortResultsByScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key() < results[j].Key()
	})
}
