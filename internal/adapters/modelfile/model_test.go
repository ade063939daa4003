package modelfile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

func validArtifact() Artifact {
	return Artifact{
		Version:      "test-1",
		FeatureNames: domain.FeatureNames[:],
		Means:        []float64{1, 1, 1, 0, 5, 50, 10},
		Scales:       []float64{1, 1, 1, 1, 5, 10, 10},
		Weights:      []float64{0, 0.5, 0.3, 0, -0.1, 0, 0},
		Bias:         0,
		Blend:        0.5,
	}
}

func TestArtifact_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Artifact)
	}{
		{"wrong feature count", func(a *Artifact) { a.FeatureNames = a.FeatureNames[:3] }},
		{"wrong feature order", func(a *Artifact) {
			a.FeatureNames = append([]string{}, a.FeatureNames...)
			a.FeatureNames[0], a.FeatureNames[1] = a.FeatureNames[1], a.FeatureNames[0]
		}},
		{"short weights", func(a *Artifact) { a.Weights = a.Weights[:6] }},
		{"zero scale", func(a *Artifact) { a.Scales = []float64{1, 0, 1, 1, 1, 1, 1} }},
		{"nan mean", func(a *Artifact) { a.Means = []float64{math.NaN(), 0, 0, 0, 0, 0, 0} }},
		{"blend out of range", func(a *Artifact) { a.Blend = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := validArtifact()
			tt.mutate(&art)
			assert.ErrorIs(t, art.Validate(), ports.ErrInvalidArtifact)
		})
	}
	assert.NoError(t, validArtifact().Validate())
}

func TestLinearModel_Correct(t *testing.T) {
	m, err := NewLinearModel(validArtifact())
	require.NoError(t, err)

	// Features at the means give z = bias = 0, p = 0.5.
	atMean := domain.FeatureVector{1, 1, 1, 0, 5, 50, 10}
	got, err := m.Correct(60, atMean)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*60+0.5*50, got, 1e-9)

	strong := atMean
	strong[domain.FeatureVolumeRatio] = 5
	hi, err := m.Correct(60, strong)
	require.NoError(t, err)
	assert.Greater(t, hi, got)
	assert.Equal(t, "test-1", m.Version())
}

func TestLoadAndWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, Write(path, validArtifact()))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", m.Version())

	model, err := Loader(path)()
	require.NoError(t, err)
	assert.NotNil(t, model)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ports.ErrModelUnavailable)

	_, err = Load("")
	assert.ErrorIs(t, err, ports.ErrModelUnavailable)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ports.ErrInvalidArtifact)

	_, err = Loader(filepath.Join(dir, "missing.json"))()
	assert.ErrorIs(t, err, ports.ErrModelUnavailable)
}
