package domain

import "time"

// ScorePath records which branch produced a confidence value.
type ScorePath string

const (
	PathScored   ScorePath = "scored"   // Model correction applied
	PathFallback ScorePath = "fallback" // Rule-based confidence kept
)

// ScoreOutcome is the result of confidence scoring.
type ScoreOutcome struct {
	Confidence float64
	Path       ScorePath
	Reason     string // Why the fallback was taken; empty when scored
}

// Scored builds an outcome produced by the correction model.
func Scored(confidence float64) ScoreOutcome {
	return ScoreOutcome{Confidence: confidence, Path: PathScored}
}

// Fallback builds an outcome that kept the rule-based confidence.
func Fallback(confidence float64, reason string) ScoreOutcome {
	return ScoreOutcome{Confidence: confidence, Path: PathFallback, Reason: reason}
}

// IsFallback reports whether the rule-based confidence was kept.
func (s ScoreOutcome) IsFallback() bool {
	return s.Path == PathFallback
}

// ScoreRecord captures one scoring decision for offline analysis and retraining.
type ScoreRecord struct {
	ID              string
	Symbol          string
	Interval        Interval
	PatternType     PatternType
	StartIndex      int
	EndIndex        int
	Features        FeatureVector
	BaseConfidence  float64
	FinalConfidence float64
	Path            ScorePath
	Reason          string
	CreatedAt       time.Time
}
