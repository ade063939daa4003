package indicators

import (
	"github.com/markcheno/go-talib"

	"patternScout/internal/domain"
)

// ATRConfig holds configuration for the Average True Range indicator.
type ATRConfig struct {
	IndicatorConfig
}

// ATR implements the Average True Range indicator using Wilder's smoothing.
type ATR struct {
	BaseIndicator
}

// NewATR creates a new Average True Range indicator instance.
func NewATR(config ATRConfig) *ATR {
	return &ATR{BaseIndicator: BaseIndicator{Config: config.IndicatorConfig}}
}

// Name returns the name of the indicator.
func (a *ATR) Name() string {
	return "ATR"
}

// RequiredDataPoints returns period+1; the first true range needs a previous close.
func (a *ATR) RequiredDataPoints() int {
	return a.Config.Period + 1
}

// Calculate computes the Average True Range at the last candle.
func (a *ATR) Calculate(candles []domain.Candle) (float64, error) {
	if a.Config.Period < 1 || len(candles) < a.RequiredDataPoints() {
		return 0, notEnough(a.Name(), a.RequiredDataPoints(), len(candles))
	}
	highs, lows, closes := ohlc(candles)
	out := talib.Atr(highs, lows, closes, a.Config.Period)
	return out[len(out)-1], nil
}
