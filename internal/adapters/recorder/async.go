// Package recorder buffers score records in memory and persists them in the background.
package recorder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// Config controls buffering and flushing.
type Config struct {
	Buffer        int           // Records held before Emit starts dropping
	BatchSize     int           // Records written per transaction
	FlushInterval time.Duration // Max time a record waits before being written
	WriteTimeout  time.Duration // Per-batch write deadline
}

// DefaultConfig returns the recorder defaults.
func DefaultConfig() Config {
	return Config{Buffer: 1024, BatchSize: 64, FlushInterval: time.Second, WriteTimeout: 5 * time.Second}
}

// Async implements ports.ScoreRecordSink. Emit never blocks: records are dropped when the
// buffer is full or the recorder is closed.
type Async struct {
	cfg    Config
	repo   ports.ScoreRecordRepository
	logger ports.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan domain.ScoreRecord
	done   chan struct{}

	started atomic.Bool
	dropped atomic.Int64
	written atomic.Int64
}

// NewAsync creates a recorder writing to repo. Call Start to begin draining.
func NewAsync(repo ports.ScoreRecordRepository, logger ports.Logger, cfg Config) (*Async, error) {
	if repo == nil || logger == nil {
		return nil, errors.New("missing required dependencies for recorder")
	}
	def := DefaultConfig()
	if cfg.Buffer <= 0 {
		cfg.Buffer = def.Buffer
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return &Async{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		ch:     make(chan domain.ScoreRecord, cfg.Buffer),
		done:   make(chan struct{}),
	}, nil
}

// Emit queues rec without blocking.
func (a *Async) Emit(rec domain.ScoreRecord) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.dropped.Add(1)
		return
	}
	select {
	case a.ch <- rec:
	default:
		a.dropped.Add(1)
	}
}

// Start launches the background writer. Calling it more than once has no effect.
func (a *Async) Start(ctx context.Context) {
	if !a.started.CompareAndSwap(false, true) {
		return
	}
	go a.run(ctx)
}

// Close stops accepting records, flushes what is buffered and waits for the writer
// until ctx expires.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()

	if !a.started.Load() {
		// Nothing is draining; flush inline.
		a.Start(context.Background())
	}
	select {
	case <-a.done:
		a.logger.Info(ctx, "score recorder stopped", ports.Fields{"written": a.written.Load(), "dropped": a.dropped.Load()})
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped reports how many records were discarded.
func (a *Async) Dropped() int64 { return a.dropped.Load() }

// Written reports how many records were persisted.
func (a *Async) Written() int64 { return a.written.Load() }

func (a *Async) run(ctx context.Context) {
	defer close(a.done)
	ticker := time.NewTicker(a.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]*domain.ScoreRecord, 0, a.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		wctx, cancel := context.WithTimeout(context.Background(), a.cfg.WriteTimeout)
		defer cancel()
		if err := a.repo.SaveBatch(wctx, batch); err != nil {
			a.dropped.Add(int64(len(batch)))
			a.logger.Error(context.Background(), err, "failed to persist score records", ports.Fields{"count": len(batch)})
		} else {
			a.written.Add(int64(len(batch)))
		}
		batch = make([]*domain.ScoreRecord, 0, a.cfg.BatchSize)
	}

	for {
		select {
		case rec, ok := <-a.ch:
			if !ok {
				flush()
				return
			}
			r := rec
			batch = append(batch, &r)
			if len(batch) >= a.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			// Persist what is already buffered, then stop; later Emits drop once the buffer fills.
			for {
				select {
				case rec, ok := <-a.ch:
					if !ok {
						flush()
						return
					}
					r := rec
					batch = append(batch, &r)
					if len(batch) >= a.cfg.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
