package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"patternScout/config"
	"patternScout/internal/detection"
	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// PatternDetector runs one detection request.
type PatternDetector interface {
	Detect(ctx context.Context, req detection.Request) (*domain.DetectionResult, error)
}

// BatchItem is the outcome of one request in a batch, in request order.
type BatchItem struct {
	Symbol string
	Result *domain.DetectionResult
	Err    error
}

// DetectionService applies request deadlines and fans batches out over a bounded worker pool.
type DetectionService struct {
	cfg      *config.Config
	logger   ports.Logger
	detector PatternDetector
}

// NewDetectionService creates a new application service instance.
func NewDetectionService(cfg *config.Config, logger ports.Logger, detector PatternDetector) (*DetectionService, error) {
	// Validate dependencies
	if cfg == nil || logger == nil || detector == nil {
		return nil, fmt.Errorf("%w: missing required dependencies for DetectionService", ports.ErrConfigurationError)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("%w: Workers must be positive", ports.ErrConfigurationError)
	}
	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("%w: RequestTimeout cannot be negative", ports.ErrConfigurationError)
	}
	return &DetectionService{cfg: cfg, logger: logger, detector: detector}, nil
}

// Detect runs one request under the configured deadline. When the deadline or the
// caller's context ends first, the result is abandoned and a wrapped ErrTimeout or
// ErrContextCanceled is returned.
func (s *DetectionService) Detect(ctx context.Context, req detection.Request) (*domain.DetectionResult, error) {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}
	fields := ports.Fields{
		"symbol":   req.Symbol,
		"interval": string(req.Interval),
		"candles":  len(req.Candles),
	}

	type outcome struct {
		res *domain.DetectionResult
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		res, err := s.detector.Detect(ctx, req)
		done <- outcome{res, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}
	fields["duration"] = time.Since(start)

	if out.err != nil {
		err := classify(out.err)
		switch {
		case errors.Is(err, ports.ErrValidation):
			s.logger.Warn(ctx, "Rejected detection request", fields, ports.Fields{"reason": err.Error()})
		case errors.Is(err, ports.ErrTimeout), errors.Is(err, ports.ErrContextCanceled):
			s.logger.Warn(ctx, "Detection abandoned", fields, ports.Fields{"reason": err.Error()})
		default:
			s.logger.Error(ctx, err, "Detection failed", fields)
		}
		return nil, err
	}

	fields["patterns"] = len(out.res.Detected)
	s.logger.Info(ctx, "Detection complete", fields)
	return out.res, nil
}

// DetectBatch runs every request with at most Workers in flight. Per-request
// failures are reported in the items; the batch itself never fails.
func (s *DetectionService) DetectBatch(ctx context.Context, reqs []detection.Request) []BatchItem {
	items := make([]BatchItem, len(reqs))
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)
	for i, req := range reqs {
		items[i].Symbol = req.Symbol
		if err := ctx.Err(); err != nil {
			items[i].Err = classify(err)
			continue
		}
		i, req := i, req
		g.Go(func() error {
			items[i].Result, items[i].Err = s.Detect(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	s.logger.Info(ctx, "Batch complete", ports.Fields{"requests": len(reqs), "failed": failed})
	return items
}

func classify(err error) error {
	switch {
	case errors.Is(err, ports.ErrTimeout), errors.Is(err, ports.ErrContextCanceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
	}
	return err
}
