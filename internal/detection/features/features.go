// Package features turns a matched pattern into the fixed-order vector consumed by the
// confidence model.
package features

import (
	"math"

	"patternScout/internal/detection/indicators"
	"patternScout/internal/domain"
)

// Config holds indicator periods used when building features.
type Config struct {
	ATRPeriod      int
	RSIPeriod      int
	VolumeLookback int
}

// DefaultConfig returns the feature defaults.
func DefaultConfig() Config {
	return Config{ATRPeriod: 14, RSIPeriod: 14, VolumeLookback: 20}
}

// neutralRSI is reported when momentum cannot be computed.
const neutralRSI = 50

// Build computes the feature vector of p over candles. Indicator periods shrink to the
// available history; values that still cannot be computed fall back to neutral defaults.
func Build(candles []domain.Candle, p domain.Pattern, cfg Config) domain.FeatureVector {
	var f domain.FeatureVector
	if len(candles) == 0 || p.EndIndex < 0 || p.EndIndex >= len(candles) || p.StartIndex > p.EndIndex {
		f[domain.FeatureMomentum] = neutralRSI
		return f
	}
	end := p.EndIndex
	history := candles[:end+1]
	closeAt := candles[end].Close

	f[domain.FeatureVolatility] = volatilityPct(candles[p.StartIndex:end+1], cfg.ATRPeriod, closeAt)
	f[domain.FeatureVolumeRatio] = volumeRatio(candles, end, cfg.VolumeLookback)
	f[domain.FeatureLevelStrength] = levelStrength(p)
	f[domain.FeatureSlope] = slopePct(candles, p, closeAt)
	f[domain.FeatureBarsSince] = float64(len(candles) - 1 - end)
	f[domain.FeatureMomentum] = momentum(history, cfg.RSIPeriod)
	f[domain.FeatureSpan] = float64(end - p.StartIndex + 1)

	for i, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			f[i] = 0
		}
	}
	return f
}

// value runs ind when candles cover its lookback.
func value(ind indicators.Indicator, candles []domain.Candle) (float64, bool) {
	if len(candles) < ind.RequiredDataPoints() {
		return 0, false
	}
	v, err := ind.Calculate(candles)
	return v, err == nil
}

// volatilityPct is the ATR over the pattern span as a percent of closeAt. A single-candle
// span uses its own range.
func volatilityPct(span []domain.Candle, period int, closeAt float64) float64 {
	if closeAt == 0 {
		return 0
	}
	if p := minInt(period, len(span)-1); p >= 1 {
		atr := indicators.NewATR(indicators.ATRConfig{IndicatorConfig: indicators.IndicatorConfig{Period: p}})
		if v, ok := value(atr, span); ok {
			return v / closeAt * 100
		}
	}
	last := span[len(span)-1]
	return (last.High - last.Low) / closeAt * 100
}

// volumeRatio compares the end candle's volume with the SMA of the candles before it.
func volumeRatio(candles []domain.Candle, end, lookback int) float64 {
	start := end - lookback
	if start < 0 {
		start = 0
	}
	var avg float64
	if n := end - start; n >= 2 {
		sma := indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: n},
			Source:          indicators.SourceVolume,
		})
		avg, _ = value(sma, candles[start:end])
	} else {
		avg = indicators.TrailingMean(indicators.Volumes(candles), end, lookback)
	}
	if avg <= 0 {
		return 1
	}
	return candles[end].Volume / avg
}

func levelStrength(p domain.Pattern) float64 {
	best := 0.0
	for _, l := range p.SupportingLevels {
		best = math.Max(best, l.Strength)
	}
	if best > 0 {
		return best
	}
	for _, t := range p.SupportingTrendlines {
		best = math.Max(best, float64(len(t.TouchIndices)))
	}
	return best
}

func slopePct(candles []domain.Candle, p domain.Pattern, closeAt float64) float64 {
	if closeAt == 0 {
		return 0
	}
	steepest, found := 0.0, false
	for _, t := range p.SupportingTrendlines {
		steepest = math.Max(steepest, math.Abs(t.Slope))
		found = true
	}
	if !found {
		span := candles[p.StartIndex : p.EndIndex+1]
		if len(span) < 2 {
			return 0
		}
		slope, ok := value(indicators.NewLinearRegressionSlope(indicators.IndicatorConfig{Period: len(span)}), span)
		if !ok {
			return 0
		}
		steepest = math.Abs(slope)
	}
	return steepest / math.Abs(closeAt) * 100
}

func momentum(history []domain.Candle, period int) float64 {
	p := minInt(period, len(history)-1)
	if p < 2 {
		return neutralRSI
	}
	rsi, ok := value(indicators.NewRSI(indicators.RSIConfig{IndicatorConfig: indicators.IndicatorConfig{Period: p}}), history)
	if !ok {
		return neutralRSI
	}
	return rsi
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
