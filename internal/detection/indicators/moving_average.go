package indicators

import (
	"github.com/markcheno/go-talib"

	"patternScout/internal/domain"
)

// MovingAverageConfig holds configuration for moving average indicators.
type MovingAverageConfig struct {
	IndicatorConfig
	Source Source // Defaults to close
}

// MovingAverage is a simple moving average over closes or volumes.
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance.
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	if config.Source == "" {
		config.Source = SourceClose
	}
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator.
func (m *MovingAverage) Name() string {
	return "SMA"
}

// Calculate computes the moving average at the last candle.
func (m *MovingAverage) Calculate(candles []domain.Candle) (float64, error) {
	period := m.Config.Period
	if period < 2 || len(candles) < period {
		return 0, notEnough(m.Name(), period, len(candles))
	}
	values := extract(candles, m.config.Source)
	out := talib.Sma(values, period)
	return out[len(out)-1], nil
}
