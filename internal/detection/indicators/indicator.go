// Package indicators wraps TA-Lib series functions behind a small single-value interface
// used by the feature builder.
package indicators

import (
	"fmt"

	"patternScout/internal/domain"
)

// Indicator represents a technical indicator that can be calculated from candle data.
type Indicator interface {
	// Calculate returns the indicator value at the last candle.
	Calculate(candles []domain.Candle) (float64, error)

	// RequiredDataPoints returns the minimum number of candles needed for calculation.
	RequiredDataPoints() int

	// Name returns the name of the indicator.
	Name() string
}

// IndicatorConfig holds common configuration for indicators.
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators.
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of candles needed for calculation.
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period
}

// Source selects which candle field feeds a single-series indicator.
type Source string

const (
	SourceClose  Source = "close"
	SourceVolume Source = "volume"
)

func extract(candles []domain.Candle, src Source) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		if src == SourceVolume {
			out[i] = c.Volume
		} else {
			out[i] = c.Close
		}
	}
	return out
}

func ohlc(candles []domain.Candle) (highs, lows, closes []float64) {
	highs = make([]float64, len(candles))
	lows = make([]float64, len(candles))
	closes = make([]float64, len(candles))
	for i, c := range candles {
		highs[i], lows[i], closes[i] = c.High, c.Low, c.Close
	}
	return highs, lows, closes
}

func notEnough(name string, need, got int) error {
	return fmt.Errorf("not enough data (%d) to calculate %s, need %d", got, name, need)
}

// TrailingMean averages values[end-lookback .. end-1], clipping the window at the start of
// the series. It returns 0 when no history precedes end.
func TrailingMean(values []float64, end, lookback int) float64 {
	if end > len(values) {
		end = len(values)
	}
	start := end - lookback
	if start < 0 {
		start = 0
	}
	if end <= start {
		return 0
	}
	sum := 0.0
	for _, v := range values[start:end] {
		sum += v
	}
	return sum / float64(end-start)
}

// Volumes returns the volume series of candles.
func Volumes(candles []domain.Candle) []float64 {
	return extract(candles, SourceVolume)
}
