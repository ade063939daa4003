package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...ports.Fields)            {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...ports.Fields)             {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...ports.Fields)             {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...ports.Fields) {}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pattern-scout-test-*")
	require.NoError(t, err)

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

func record(pt domain.PatternType, base, final float64, path domain.ScorePath, at time.Time) *domain.ScoreRecord {
	return &domain.ScoreRecord{
		Symbol:          "ETHUSDT",
		Interval:        domain.Interval4h,
		PatternType:     pt,
		StartIndex:      3,
		EndIndex:        12,
		Features:        domain.FeatureVector{1.5, 2, 3.25, 0.1, 4, 61.2, 10},
		BaseConfidence:  base,
		FinalConfidence: final,
		Path:            path,
		CreatedAt:       at,
	}
}

func TestRepository_SaveAndFind(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	older := record(domain.PatternBreakout, 55, 55, domain.PathFallback, now.Add(-time.Hour))
	older.Reason = "confidence model unavailable"
	newer := record(domain.PatternBreakout, 60, 72, domain.PathScored, now)
	other := record(domain.PatternDoubleTop, 50, 50, domain.PathFallback, now)

	for _, rec := range []*domain.ScoreRecord{older, newer, other} {
		require.NoError(t, repo.Save(ctx, rec))
		assert.NotEmpty(t, rec.ID)
	}

	got, err := repo.FindByPatternType(ctx, domain.PatternBreakout, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
	assert.Equal(t, newer.Features, got[0].Features)
	assert.Equal(t, domain.PathScored, got[0].Path)
	assert.Equal(t, domain.Interval4h, got[0].Interval)
	assert.Equal(t, "confidence model unavailable", got[1].Reason)
	assert.True(t, got[0].CreatedAt.Equal(now))

	limited, err := repo.FindByPatternType(ctx, domain.PatternBreakout, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := repo.FindByPatternType(ctx, domain.PatternSymmetricalTriangle, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_SaveBatchAndSummary(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Now().UTC()

	recs := []*domain.ScoreRecord{
		record(domain.PatternBreakout, 50, 50, domain.PathFallback, now),
		record(domain.PatternBreakout, 70, 80, domain.PathScored, now),
		record(domain.PatternHeadAndShoulders, 60, 60, domain.PathFallback, now),
	}
	require.NoError(t, repo.SaveBatch(ctx, recs))
	require.NoError(t, repo.SaveBatch(ctx, nil))

	summary, err := repo.SummaryByPatternType(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 2)

	assert.Equal(t, domain.PatternBreakout, summary[0].PatternType)
	assert.Equal(t, 2, summary[0].Count)
	assert.Equal(t, 1, summary[0].FallbackCount)
	assert.InDelta(t, 60.0, summary[0].AvgBaseConfidence, 1e-9)
	assert.InDelta(t, 65.0, summary[0].AvgFinalConfidence, 1e-9)

	assert.Equal(t, domain.PatternHeadAndShoulders, summary[1].PatternType)
	assert.Equal(t, 1, summary[1].Count)
}

func TestRepository_SaveBatchIsAtomic(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	dup := record(domain.PatternBreakdown, 50, 50, domain.PathFallback, time.Now())
	dup.ID = "fixed-id"
	again := *dup

	err := repo.SaveBatch(ctx, []*domain.ScoreRecord{dup, &again})
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrQueryFailed)

	got, err := repo.FindByPatternType(ctx, domain.PatternBreakdown, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepository_SaveNil(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	assert.ErrorIs(t, repo.Save(context.Background(), nil), ports.ErrInvalidRequest)
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}
