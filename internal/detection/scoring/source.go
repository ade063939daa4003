// Package scoring corrects rule-based pattern confidence with an optional trained model,
// falling back to the rule-based value whenever the model cannot be used.
package scoring

import (
	"fmt"
	"sync"
	"sync/atomic"

	"patternScout/internal/ports"
)

// Loader produces a confidence model. It is called at most once per ModelSource.
type Loader func() (ports.ConfidenceModel, error)

// ModelSource lazily loads a confidence model on first use and shares it between callers.
// It is safe for concurrent use; the loader runs at most once.
type ModelSource struct {
	once  sync.Once
	load  Loader
	model ports.ConfidenceModel
	err   error
	loads atomic.Int32
}

// NewModelSource creates a source backed by load. A nil loader yields a source that
// always reports ErrModelUnavailable.
func NewModelSource(load Loader) *ModelSource {
	return &ModelSource{load: load}
}

// StaticSource wraps an already constructed model.
func StaticSource(m ports.ConfidenceModel) *ModelSource {
	return NewModelSource(func() (ports.ConfidenceModel, error) { return m, nil })
}

// Unavailable returns a source that never provides a model.
func Unavailable() *ModelSource {
	return NewModelSource(nil)
}

// Model returns the loaded model, loading it on the first call.
// Failures are sticky and wrap ports.ErrModelUnavailable.
func (s *ModelSource) Model() (ports.ConfidenceModel, error) {
	s.once.Do(func() {
		s.loads.Add(1)
		s.model, s.err = s.safeLoad()
		if s.err == nil && s.model == nil {
			s.err = fmt.Errorf("%w: loader returned no model", ports.ErrModelUnavailable)
		}
	})
	return s.model, s.err
}

// Loads reports how many times the loader ran.
func (s *ModelSource) Loads() int {
	return int(s.loads.Load())
}

func (s *ModelSource) safeLoad() (m ports.ConfidenceModel, err error) {
	if s.load == nil {
		return nil, fmt.Errorf("%w: no artifact configured", ports.ErrModelUnavailable)
	}
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("%w: loader panic: %v", ports.ErrModelUnavailable, r)
		}
	}()
	m, err = s.load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrModelUnavailable, err)
	}
	return m, nil
}
