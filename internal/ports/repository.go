package ports

import (
	"context"

	"patternScout/internal/domain"
)

// PatternScoreSummary aggregates stored score records for one pattern type.
type PatternScoreSummary struct {
	PatternType        domain.PatternType
	Count              int
	FallbackCount      int
	AvgBaseConfidence  float64
	AvgFinalConfidence float64
}

// ScoreRecordRepository stores scoring decisions for offline analysis and retraining.
type ScoreRecordRepository interface {
	// Save persists a record. Records without an ID are assigned one.
	Save(ctx context.Context, rec *domain.ScoreRecord) error
	// SaveBatch persists several records in one transaction.
	SaveBatch(ctx context.Context, recs []*domain.ScoreRecord) error
	// FindByPatternType returns the most recent records of a type, up to limit.
	FindByPatternType(ctx context.Context, patternType domain.PatternType, limit int) ([]*domain.ScoreRecord, error)
	// SummaryByPatternType aggregates all records grouped by pattern type.
	SummaryByPatternType(ctx context.Context) ([]PatternScoreSummary, error)
}
