// Package modelfile loads the confidence-correction artifact from a JSON file.
//
// The artifact is a logistic model over standardized features whose probability is blended
// with the rule-based confidence:
//
//	p   = sigmoid(bias + sum(weights[i] * (x[i] - means[i]) / scales[i]))
//	out = (1 - blend) * base + blend * 100 * p
package modelfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// Artifact is the on-disk model description.
type Artifact struct {
	Version      string    `json:"version"`
	FeatureNames []string  `json:"feature_names"`
	Means        []float64 `json:"means"`
	Scales       []float64 `json:"scales"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Blend        float64   `json:"blend"`
}

// Validate checks that the artifact matches the feature layout and holds usable numbers.
func (a Artifact) Validate() error {
	if len(a.FeatureNames) != domain.NumFeatures {
		return fmt.Errorf("%w: expected %d feature names, got %d", ports.ErrInvalidArtifact, domain.NumFeatures, len(a.FeatureNames))
	}
	for i, name := range a.FeatureNames {
		if name != domain.FeatureNames[i] {
			return fmt.Errorf("%w: feature %d is %q, expected %q", ports.ErrInvalidArtifact, i, name, domain.FeatureNames[i])
		}
	}
	for _, v := range []struct {
		name string
		vals []float64
	}{{"means", a.Means}, {"scales", a.Scales}, {"weights", a.Weights}} {
		if len(v.vals) != domain.NumFeatures {
			return fmt.Errorf("%w: %s has %d values, expected %d", ports.ErrInvalidArtifact, v.name, len(v.vals), domain.NumFeatures)
		}
		for i, x := range v.vals {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: %s[%d] is not finite", ports.ErrInvalidArtifact, v.name, i)
			}
		}
	}
	for i, s := range a.Scales {
		if s == 0 {
			return fmt.Errorf("%w: scales[%d] is zero", ports.ErrInvalidArtifact, i)
		}
	}
	if math.IsNaN(a.Bias) || math.IsInf(a.Bias, 0) {
		return fmt.Errorf("%w: bias is not finite", ports.ErrInvalidArtifact)
	}
	if a.Blend < 0 || a.Blend > 1 || math.IsNaN(a.Blend) {
		return fmt.Errorf("%w: blend must be within [0,1]", ports.ErrInvalidArtifact)
	}
	return nil
}

// LinearModel implements ports.ConfidenceModel. It is immutable and safe for concurrent use.
type LinearModel struct {
	art Artifact
}

// NewLinearModel validates art and wraps it as a model.
func NewLinearModel(art Artifact) (*LinearModel, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	return &LinearModel{art: art}, nil
}

// Version returns the artifact version.
func (m *LinearModel) Version() string {
	return m.art.Version
}

// Probability returns the model's probability that the pattern is genuine.
func (m *LinearModel) Probability(f domain.FeatureVector) float64 {
	z := m.art.Bias
	for i := range f {
		z += m.art.Weights[i] * (f[i] - m.art.Means[i]) / m.art.Scales[i]
	}
	return 1 / (1 + math.Exp(-z))
}

// Correct blends the base confidence with the model probability.
func (m *LinearModel) Correct(base float64, f domain.FeatureVector) (float64, error) {
	p := m.Probability(f)
	if math.IsNaN(p) {
		return 0, fmt.Errorf("%w: probability is NaN", ports.ErrModelInference)
	}
	return (1-m.art.Blend)*base + m.art.Blend*100*p, nil
}

// Load reads and validates an artifact file. A missing file reports ErrModelUnavailable.
func Load(path string) (*LinearModel, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no model path configured", ports.ErrModelUnavailable)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: artifact %s not found", ports.ErrModelUnavailable, path)
		}
		return nil, fmt.Errorf("%w: read artifact %s: %v", ports.ErrModelUnavailable, path, err)
	}
	var art Artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ports.ErrInvalidArtifact, path, err)
	}
	return NewLinearModel(art)
}

// Loader returns a function suitable for a lazily loading model source.
func Loader(path string) func() (ports.ConfidenceModel, error) {
	return func() (ports.ConfidenceModel, error) {
		m, err := Load(path)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Write stores an artifact as indented JSON after validating it.
func Write(path string, art Artifact) error {
	if err := art.Validate(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}
