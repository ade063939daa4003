package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// Repository implements ports.ScoreRecordRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (or creates) the database and ensures the schema exists.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	ctx := context.Background()
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/pattern_scores.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("%w: failed to create data directory '%s': %v", ports.ErrDBConnection, filepath.Dir(dbPath), err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single writer connection avoids SQLITE_BUSY under concurrent Save calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(ctx); err != nil {
		db.Close()
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(ctx, "score record database ready", ports.Fields{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS score_records (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		bar_interval TEXT NOT NULL,
		pattern_type TEXT NOT NULL,
		start_index INTEGER NOT NULL,
		end_index INTEGER NOT NULL,
		features TEXT NOT NULL,
		base_confidence REAL NOT NULL,
		final_confidence REAL NOT NULL,
		path TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_score_records_type_created ON score_records (pattern_type, created_at);
	CREATE INDEX IF NOT EXISTS idx_score_records_symbol ON score_records (symbol, bar_interval);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to execute schema initialization: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

const insertRecord = `
	INSERT INTO score_records (id, symbol, bar_interval, pattern_type, start_index, end_index,
	                           features, base_confidence, final_confidence, path, reason, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Save persists a record, assigning an ID and timestamp when missing.
func (r *Repository) Save(ctx context.Context, rec *domain.ScoreRecord) error {
	if err := insert(ctx, r.db, rec); err != nil {
		return err
	}
	r.logger.Debug(ctx, "score record saved", ports.Fields{"id": rec.ID, "pattern": string(rec.PatternType)})
	return nil
}

// SaveBatch persists records in a single transaction; either all are stored or none.
func (r *Repository) SaveBatch(ctx context.Context, recs []*domain.ScoreRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin batch: %v", ports.ErrDBConnection, err)
	}
	for _, rec := range recs {
		if err := insert(ctx, tx, rec); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit batch of %d records: %v", ports.ErrQueryFailed, len(recs), err)
	}
	r.logger.Debug(ctx, "score record batch saved", ports.Fields{"count": len(recs)})
	return nil
}

func insert(ctx context.Context, db execer, rec *domain.ScoreRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil score record", ports.ErrInvalidRequest)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	feats, err := json.Marshal(rec.Features)
	if err != nil {
		return fmt.Errorf("%w: encode features: %v", ports.ErrInvalidRequest, err)
	}
	_, err = db.ExecContext(ctx, insertRecord,
		rec.ID, rec.Symbol, string(rec.Interval), string(rec.PatternType), rec.StartIndex, rec.EndIndex,
		string(feats), rec.BaseConfidence, rec.FinalConfidence, string(rec.Path), rec.Reason, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert score record %s: %v", ports.ErrQueryFailed, rec.ID, err)
	}
	return nil
}

// FindByPatternType retrieves the most recent records of a pattern type, up to limit.
func (r *Repository) FindByPatternType(ctx context.Context, patternType domain.PatternType, limit int) ([]*domain.ScoreRecord, error) {
	const query = `
	SELECT id, symbol, bar_interval, pattern_type, start_index, end_index, features,
	       base_confidence, final_confidence, path, reason, created_at
	FROM score_records
	WHERE pattern_type = ? ORDER BY created_at DESC, id LIMIT ?`

	if limit <= 0 {
		limit = -1 // SQLite treats a negative limit as unbounded
	}
	rows, err := r.db.QueryContext(ctx, query, string(patternType), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query score records for %s: %v", ports.ErrQueryFailed, patternType, err)
	}
	defer rows.Close()

	recs := make([]*domain.ScoreRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan score record: %v", ports.ErrQueryFailed, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate score records: %v", ports.ErrQueryFailed, err)
	}
	return recs, nil
}

// SummaryByPatternType aggregates counts and average confidences per pattern type.
func (r *Repository) SummaryByPatternType(ctx context.Context) ([]ports.PatternScoreSummary, error) {
	const query = `
	SELECT pattern_type, COUNT(*),
	       SUM(CASE WHEN path = ? THEN 1 ELSE 0 END),
	       AVG(base_confidence), AVG(final_confidence)
	FROM score_records
	GROUP BY pattern_type
	ORDER BY pattern_type`

	rows, err := r.db.QueryContext(ctx, query, string(domain.PathFallback))
	if err != nil {
		return nil, fmt.Errorf("%w: summarize score records: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	out := make([]ports.PatternScoreSummary, 0)
	for rows.Next() {
		var s ports.PatternScoreSummary
		var pt string
		if err := rows.Scan(&pt, &s.Count, &s.FallbackCount, &s.AvgBaseConfidence, &s.AvgFinalConfidence); err != nil {
			return nil, fmt.Errorf("%w: scan summary row: %v", ports.ErrQueryFailed, err)
		}
		s.PatternType = domain.PatternType(pt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate summary rows: %v", ports.ErrQueryFailed, err)
	}
	return out, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*domain.ScoreRecord, error) {
	rec := &domain.ScoreRecord{}
	var interval, patternType, path, feats string
	err := s.Scan(&rec.ID, &rec.Symbol, &interval, &patternType, &rec.StartIndex, &rec.EndIndex, &feats,
		&rec.BaseConfidence, &rec.FinalConfidence, &path, &rec.Reason, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(feats), &rec.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	rec.Interval = domain.Interval(interval)
	rec.PatternType = domain.PatternType(patternType)
	rec.Path = domain.ScorePath(path)
	return rec, nil
}
