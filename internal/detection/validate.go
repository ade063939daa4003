package detection

import (
	"math"

	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

// ValidateRequest rejects malformed input as a whole. The first problem found is reported.
func ValidateRequest(req Request) error {
	if !req.Interval.Valid() {
		return ports.NewValidationError(-1, "interval", "unknown interval "+quote(string(req.Interval)))
	}
	if len(req.Candles) == 0 {
		return ports.NewValidationError(-1, "candles", "sequence is empty")
	}
	return ValidateCandles(req.Candles)
}

// ValidateCandles checks numeric sanity, OHLC consistency and strictly increasing timestamps.
func ValidateCandles(candles []domain.Candle) error {
	for i, c := range candles {
		fields := [...]struct {
			name string
			v    float64
		}{{"open", c.Open}, {"high", c.High}, {"low", c.Low}, {"close", c.Close}, {"volume", c.Volume}}
		for _, f := range fields {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				return ports.NewValidationError(i, f.name, "value is not finite")
			}
			if f.v < 0 {
				return ports.NewValidationError(i, f.name, "value is negative")
			}
		}
		if c.Low > c.High {
			return ports.NewValidationError(i, "low", "low is above high")
		}
		if c.High < math.Max(c.Open, c.Close) {
			return ports.NewValidationError(i, "high", "high is below the candle body")
		}
		if c.Low > math.Min(c.Open, c.Close) {
			return ports.NewValidationError(i, "low", "low is above the candle body")
		}
		if c.Timestamp.IsZero() {
			return ports.NewValidationError(i, "timestamp", "timestamp is missing")
		}
		if i > 0 && !c.Timestamp.After(candles[i-1].Timestamp) {
			return ports.NewValidationError(i, "timestamp", "timestamps must be strictly increasing")
		}
	}
	return nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
