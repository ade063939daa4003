package indicators

import (
	"github.com/markcheno/go-talib"

	"patternScout/internal/domain"
)

// RSIConfig holds configuration for the RSI indicator.
type RSIConfig struct {
	IndicatorConfig
}

// RSI implements the Relative Strength Index indicator.
type RSI struct {
	BaseIndicator
}

// NewRSI creates a new RSI indicator instance.
func NewRSI(config RSIConfig) *RSI {
	return &RSI{BaseIndicator: BaseIndicator{Config: config.IndicatorConfig}}
}

// Name returns the name of the indicator.
func (r *RSI) Name() string {
	return "RSI"
}

// RequiredDataPoints returns period+1; RSI is computed over price changes.
func (r *RSI) RequiredDataPoints() int {
	return r.Config.Period + 1
}

// Calculate computes the RSI at the last candle using Wilder's smoothing.
func (r *RSI) Calculate(candles []domain.Candle) (float64, error) {
	if r.Config.Period < 2 || len(candles) < r.RequiredDataPoints() {
		return 0, notEnough(r.Name(), r.RequiredDataPoints(), len(candles))
	}
	closes := extract(candles, SourceClose)

	flat := true
	for _, c := range closes[1:] {
		if c != closes[0] {
			flat = false
			break
		}
	}
	if flat {
		return 50, nil // Neutral if no change
	}

	out := talib.Rsi(closes, r.Config.Period)
	return clampPercent(out[len(out)-1]), nil
}

func clampPercent(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
