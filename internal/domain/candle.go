package domain

import "time"

// Candle represents a single OHLCV data point.
type Candle struct {
	Timestamp time.Time // Start time of the interval
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Traded volume
}

// BodyHigh returns the upper edge of the candle body.
func (c Candle) BodyHigh() float64 {
	if c.Open > c.Close {
		return c.Open
	}
	return c.Close
}

// BodyLow returns the lower edge of the candle body.
func (c Candle) BodyLow() float64 {
	if c.Open < c.Close {
		return c.Open
	}
	return c.Close
}

// PriceRange returns the lowest low and highest high of the sequence.
// An empty sequence yields zeros.
func PriceRange(candles []Candle) (low, high float64) {
	if len(candles) == 0 {
		return 0, 0
	}
	low, high = candles[0].Low, candles[0].High
	for _, c := range candles[1:] {
		if c.Low < low {
			low = c.Low
		}
		if c.High > high {
			high = c.High
		}
	}
	return low, high
}
