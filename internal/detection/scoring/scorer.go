package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// Subject labels the request a pattern was detected in.
type Subject struct {
	Symbol   string
	Interval domain.Interval
}

// Scorer turns a base confidence and features into a final confidence.
// It never returns an error; every model failure degrades to the base confidence.
type Scorer struct {
	source *ModelSource
	sink   ports.ScoreRecordSink
	logger ports.Logger
	now    func() time.Time

	warned    atomicFlag
	sinkPanic atomicFlag
}

// NewScorer creates a scorer. source, sink and logger may be nil.
func NewScorer(source *ModelSource, sink ports.ScoreRecordSink, logger ports.Logger) *Scorer {
	if source == nil {
		source = Unavailable()
	}
	return &Scorer{source: source, sink: sink, logger: logger, now: time.Now}
}

// Score applies the model to base. The result is clamped to [0,100] and rounded.
// On the fallback path the base is returned unchanged.
func (s *Scorer) Score(ctx context.Context, base float64, features domain.FeatureVector) domain.ScoreOutcome {
	model, err := s.source.Model()
	if err != nil {
		s.warnUnavailable(ctx, err)
		return domain.Fallback(base, err.Error())
	}

	corrected, err := infer(model, base, features)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug(ctx, "confidence model inference failed, using base confidence", ports.Fields{
				"error":   err.Error(),
				"version": model.Version(),
			})
		}
		return domain.Fallback(base, err.Error())
	}
	return domain.Scored(math.Round(math.Max(0, math.Min(100, corrected))))
}

// ScorePattern scores p, stores the outcome on it and emits a ScoreRecord to the sink.
func (s *Scorer) ScorePattern(ctx context.Context, subj Subject, p domain.Pattern) domain.Pattern {
	out := s.Score(ctx, p.BaseConfidence, p.Features)
	p.Score = out
	p.Confidence = out.Confidence
	s.emit(ctx, domain.ScoreRecord{
		ID:              uuid.New().String(),
		Symbol:          subj.Symbol,
		Interval:        subj.Interval,
		PatternType:     p.Type,
		StartIndex:      p.StartIndex,
		EndIndex:        p.EndIndex,
		Features:        p.Features,
		BaseConfidence:  p.BaseConfidence,
		FinalConfidence: out.Confidence,
		Path:            out.Path,
		Reason:          out.Reason,
		CreatedAt:       s.now().UTC(),
	})
	return p
}

func infer(model ports.ConfidenceModel, base float64, features domain.FeatureVector) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fmt.Errorf("%w: panic: %v", ports.ErrModelInference, r)
		}
	}()
	v, err = model.Correct(base, features)
	if err != nil {
		if !errors.Is(err, ports.ErrModelInference) {
			err = fmt.Errorf("%w: %w", ports.ErrModelInference, err)
		}
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite output %v", ports.ErrModelInference, v)
	}
	return v, nil
}

func (s *Scorer) warnUnavailable(ctx context.Context, err error) {
	if s.logger == nil || !s.warned.set() {
		return
	}
	s.logger.Warn(ctx, "confidence model unavailable, using rule-based confidence", ports.Fields{"reason": err.Error()})
}

func (s *Scorer) emit(ctx context.Context, rec domain.ScoreRecord) {
	if s.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && s.logger != nil && s.sinkPanic.set() {
			s.logger.Error(ctx, fmt.Errorf("score record sink panic: %v", r), "dropping score records")
		}
	}()
	s.sink.Emit(rec)
}
