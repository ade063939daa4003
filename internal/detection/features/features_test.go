package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"patternScout/internal/detection/indicators"
	"patternScout/internal/domain"
)

func rising(n int) []domain.Candle {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = domain.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c - 0.5, Close: c, High: c + 1, Low: c - 1, Volume: 100,
		}
	}
	return out
}

func TestBuild_FeatureOrderAndValues(t *testing.T) {
	candles := rising(30)
	candles[25].Volume = 300
	p := domain.Pattern{
		Type:       domain.PatternBreakout,
		StartIndex: 10,
		EndIndex:   25,
		SupportingLevels: []domain.Level{
			{Price: 110, Strength: 1.2},
			{Price: 111, Strength: 2.5},
		},
	}

	f := Build(candles, p, DefaultConfig())

	assert.Greater(t, f[domain.FeatureVolatility], 0.0)
	assert.InDelta(t, 3.0, f[domain.FeatureVolumeRatio], 1e-9)
	assert.Equal(t, 2.5, f[domain.FeatureLevelStrength])
	assert.InDelta(t, 1.0/125.0*100, f[domain.FeatureSlope], 1e-6)
	assert.Equal(t, 4.0, f[domain.FeatureBarsSince])
	assert.InDelta(t, 100.0, f[domain.FeatureMomentum], 1e-6)
	assert.Equal(t, 16.0, f[domain.FeatureSpan])
}

func TestBuild_TrendlineSupport(t *testing.T) {
	candles := rising(20)
	p := domain.Pattern{
		StartIndex: 2,
		EndIndex:   19,
		SupportingTrendlines: []domain.Trendline{
			{Slope: -0.2, TouchIndices: []int{2, 8, 14}},
			{Slope: 0.1, TouchIndices: []int{4, 10}},
		},
	}

	f := Build(candles, p, DefaultConfig())
	assert.Equal(t, 3.0, f[domain.FeatureLevelStrength])
	assert.InDelta(t, 0.2/119.0*100, f[domain.FeatureSlope], 1e-9)
	assert.Equal(t, 0.0, f[domain.FeatureBarsSince])
}

func TestBuild_ShortHistoryUsesNeutralDefaults(t *testing.T) {
	candles := rising(2)
	f := Build(candles, domain.Pattern{StartIndex: 0, EndIndex: 0}, DefaultConfig())

	assert.Equal(t, 50.0, f[domain.FeatureMomentum])
	assert.Equal(t, 1.0, f[domain.FeatureVolumeRatio])
	assert.Equal(t, 1.0, f[domain.FeatureSpan])
	assert.InDelta(t, 2.0, f[domain.FeatureVolatility], 1e-9)
}

func TestBuild_InvalidSpan(t *testing.T) {
	f := Build(rising(5), domain.Pattern{StartIndex: 3, EndIndex: 9}, DefaultConfig())
	assert.Equal(t, 50.0, f[domain.FeatureMomentum])
	assert.Equal(t, 0.0, f[domain.FeatureSpan])
}

func TestBuild_VolatilityIgnoresCandlesBeforeSpan(t *testing.T) {
	p := domain.Pattern{Type: domain.PatternBreakout, StartIndex: 10, EndIndex: 25}
	calm := rising(30)
	wild := rising(30)
	for i := 0; i < p.StartIndex; i++ {
		wild[i].High += 20
		wild[i].Low -= 20
	}

	tests := []struct {
		name    string
		candles []domain.Candle
	}{
		{"calm history", calm},
		{"wide ranges before the span", wild},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Build(tt.candles, p, DefaultConfig())
			// Every true range inside the span is 2, closing at 125.
			assert.InDelta(t, 2.0/125.0*100, f[domain.FeatureVolatility], 1e-9)
		})
	}
}

func TestValue(t *testing.T) {
	candles := rising(6)
	tests := []struct {
		name    string
		ind     indicators.Indicator
		candles []domain.Candle
		want    float64
		wantOK  bool
	}{
		{"atr covered", indicators.NewATR(indicators.ATRConfig{IndicatorConfig: indicators.IndicatorConfig{Period: 3}}), candles, 2, true},
		{"atr short", indicators.NewATR(indicators.ATRConfig{IndicatorConfig: indicators.IndicatorConfig{Period: 3}}), candles[:3], 0, false},
		{"slope covered", indicators.NewLinearRegressionSlope(indicators.IndicatorConfig{Period: 4}), candles, 1, true},
		{"rsi short", indicators.NewRSI(indicators.RSIConfig{IndicatorConfig: indicators.IndicatorConfig{Period: 6}}), candles, 0, false},
		{"invalid period", indicators.NewLinearRegressionSlope(indicators.IndicatorConfig{Period: 1}), candles, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := value(tt.ind, tt.candles)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
