package modelfile

import (
	"fmt"
	"math"

	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// Example is one labeled feature vector.
type Example struct {
	Features domain.FeatureVector
	Genuine  bool
}

// FitOptions controls training.
type FitOptions struct {
	Version      string
	Epochs       int
	LearningRate float64
	L2           float64 // Weight decay, bias excluded
	Blend        float64
}

// DefaultFitOptions returns conservative training settings.
func DefaultFitOptions() FitOptions {
	return FitOptions{Version: "fit", Epochs: 500, LearningRate: 0.1, L2: 0.01, Blend: 0.5}
}

// Fit trains a logistic artifact by batch gradient descent on standardized features.
// Both classes must be present.
func Fit(examples []Example, opts FitOptions) (Artifact, error) {
	var pos int
	for _, e := range examples {
		if e.Genuine {
			pos++
		}
	}
	if pos == 0 || pos == len(examples) {
		return Artifact{}, fmt.Errorf("%w: need genuine and spurious examples, got %d of %d genuine",
			ports.ErrInvalidRequest, pos, len(examples))
	}
	if opts.Epochs <= 0 || opts.LearningRate <= 0 {
		return Artifact{}, fmt.Errorf("%w: epochs and learning rate must be positive", ports.ErrInvalidRequest)
	}

	const n = domain.NumFeatures
	means := make([]float64, n)
	scales := make([]float64, n)
	for _, e := range examples {
		for i, x := range e.Features {
			means[i] += x
		}
	}
	for i := range means {
		means[i] /= float64(len(examples))
	}
	for _, e := range examples {
		for i, x := range e.Features {
			d := x - means[i]
			scales[i] += d * d
		}
	}
	for i := range scales {
		scales[i] = math.Sqrt(scales[i] / float64(len(examples)))
		if scales[i] < 1e-12 {
			scales[i] = 1
		}
	}

	xs := make([][n]float64, len(examples))
	for k, e := range examples {
		for i, x := range e.Features {
			xs[k][i] = (x - means[i]) / scales[i]
		}
	}

	weights := make([]float64, n)
	var bias float64
	grad := make([]float64, n)
	m := float64(len(examples))
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for i := range grad {
			grad[i] = 0
		}
		var gb float64
		for k, e := range examples {
			z := bias
			for i := range weights {
				z += weights[i] * xs[k][i]
			}
			p := 1 / (1 + math.Exp(-z))
			y := 0.0
			if e.Genuine {
				y = 1
			}
			diff := p - y
			for i := range grad {
				grad[i] += diff * xs[k][i]
			}
			gb += diff
		}
		for i := range weights {
			weights[i] -= opts.LearningRate * (grad[i]/m + opts.L2*weights[i])
		}
		bias -= opts.LearningRate * gb / m
	}

	art := Artifact{
		Version:      opts.Version,
		FeatureNames: append([]string(nil), domain.FeatureNames[:]...),
		Means:        means,
		Scales:       scales,
		Weights:      weights,
		Bias:         bias,
		Blend:        opts.Blend,
	}
	return art, art.Validate()
}
