package indicators

import (
	"github.com/markcheno/go-talib"

	"patternScout/internal/domain"
)

// LinearRegressionSlope is the least-squares slope of closes over the last Period candles,
// in price units per bar.
type LinearRegressionSlope struct {
	BaseIndicator
}

// NewLinearRegressionSlope creates a new regression slope indicator instance.
func NewLinearRegressionSlope(config IndicatorConfig) *LinearRegressionSlope {
	return &LinearRegressionSlope{BaseIndicator: BaseIndicator{Config: config}}
}

// Name returns the name of the indicator.
func (l *LinearRegressionSlope) Name() string {
	return "LINEARREG_SLOPE"
}

// Calculate computes the regression slope at the last candle.
func (l *LinearRegressionSlope) Calculate(candles []domain.Candle) (float64, error) {
	period := l.Config.Period
	if period < 2 || len(candles) < period {
		return 0, notEnough(l.Name(), period, len(candles))
	}
	out := talib.LinearRegSlope(extract(candles, SourceClose), period)
	return out[len(out)-1], nil
}
