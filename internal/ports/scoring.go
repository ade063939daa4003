package ports

import "patternScout/internal/domain"

// ConfidenceModel corrects a rule-based confidence using pattern features.
// Implementations must be safe for concurrent use.
type ConfidenceModel interface {
	// Correct returns the corrected confidence on the 0..100 scale.
	Correct(base float64, features domain.FeatureVector) (float64, error)
	// Version identifies the loaded artifact in logs and records.
	Version() string
}

// ScoreRecordSink receives scoring records for asynchronous processing.
// Emit must never block the caller.
type ScoreRecordSink interface {
	Emit(rec domain.ScoreRecord)
}
