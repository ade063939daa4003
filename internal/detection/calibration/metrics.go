package calibration

import (
	"context"
	"fmt"

	"patternScout/internal/detection"
	"patternScout/internal/detection/scoring"
	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// ScenarioOutcome holds what one scenario produced under one configuration.
type ScenarioOutcome struct {
	Name           string
	Expected       []domain.PatternType
	Detected       []domain.PatternType
	Hits           int
	Misses         int
	FalsePositives int
}

// Sample is a detected pattern labeled by whether its scenario expected it.
type Sample struct {
	Type     domain.PatternType
	Base     float64
	Features domain.FeatureVector
	Genuine  bool
}

// Metrics aggregates detection quality over a scenario set.
type Metrics struct {
	Scenarios      int
	Expected       int
	Hits           int
	Misses         int
	FalsePositives int
	Negatives      int
	CleanNegatives int // Negative scenarios with no detection at all
	HitRate        float64
	Precision      float64
	Outcomes       []ScenarioOutcome
	Samples        []Sample
}

// Evaluate runs one configuration over every scenario. Scoring always takes
// the rule-based path so the thresholds are measured on their own.
func Evaluate(ctx context.Context, cfg detection.Config, scenarios []Scenario, logger ports.Logger) (*Metrics, error) {
	det, err := detection.NewDetector(cfg, scoring.NewScorer(scoring.Unavailable(), nil, nil), logger)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Scenarios: len(scenarios)}
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a, err := det.Analyze(ctx, detection.Request{Symbol: sc.Name, Interval: domain.Interval1h, Candles: sc.Candles})
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}

		expected := make(map[domain.PatternType]bool, len(sc.Expect))
		for _, t := range sc.Expect {
			expected[t] = true
		}
		out := ScenarioOutcome{Name: sc.Name, Expected: sc.Expect}
		seen := make(map[domain.PatternType]bool)
		for _, p := range a.Patterns {
			genuine := expected[p.Type]
			m.Samples = append(m.Samples, Sample{Type: p.Type, Base: p.BaseConfidence, Features: p.Features, Genuine: genuine})
			if !seen[p.Type] {
				seen[p.Type] = true
				out.Detected = append(out.Detected, p.Type)
			}
			if !genuine {
				out.FalsePositives++
			}
		}
		for _, t := range sc.Expect {
			if seen[t] {
				out.Hits++
			} else {
				out.Misses++
			}
		}

		if sc.Negative() {
			m.Negatives++
			if len(a.Patterns) == 0 {
				m.CleanNegatives++
			}
		}
		m.Expected += len(sc.Expect)
		m.Hits += out.Hits
		m.Misses += out.Misses
		m.FalsePositives += out.FalsePositives
		m.Outcomes = append(m.Outcomes, out)
	}

	if m.Expected > 0 {
		m.HitRate = float64(m.Hits) / float64(m.Expected)
	}
	if d := m.Hits + m.FalsePositives; d > 0 {
		m.Precision = float64(m.Hits) / float64(d)
	}
	return m, nil
}
