package calibration

import (
	"time"

	"patternScout/internal/domain"
)

// Scenario is a labeled candle sequence. An empty Expect marks a negative
// scenario on which any detection counts as a false positive.
type Scenario struct {
	Name    string
	Candles []domain.Candle
	Expect  []domain.PatternType
}

// Negative reports whether no pattern is expected.
func (s Scenario) Negative() bool {
	return len(s.Expect) == 0
}

var scenarioStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// FromCloses builds hourly candles around a close path. Each candle spans
// close-spread..close+spread with the open just below the close.
func FromCloses(closes []float64, spread, volume float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{
			Timestamp: scenarioStart.Add(time.Duration(i) * time.Hour),
			Open:      c - 0.3*spread,
			High:      c + spread,
			Low:       c - spread,
			Close:     c,
			Volume:    volume,
		}
	}
	return out
}

func withVolume(candles []domain.Candle, from int, volume float64) []domain.Candle {
	for i := from; i < len(candles); i++ {
		candles[i].Volume = volume
	}
	return candles
}

func breakoutScenario() Scenario {
	closes := []float64{98, 99, 99.5, 98.5, 98, 99, 99.6, 99.2, 101.5}
	highs := []float64{98.6, 99.5, 100, 99, 98.6, 99.4, 99.9, 99.6, 102}
	candles := make([]domain.Candle, len(closes))
	for i := range closes {
		candles[i] = domain.Candle{
			Timestamp: scenarioStart.Add(time.Duration(i) * time.Hour),
			Open:      closes[i] - 0.3,
			High:      highs[i],
			Low:       closes[i] - 1,
			Close:     closes[i],
			Volume:    100,
		}
	}
	candles[8].Volume = 200
	return Scenario{Name: "breakout", Candles: candles, Expect: []domain.PatternType{domain.PatternBreakout}}
}

func breakdownScenario() Scenario {
	closes := []float64{102, 101, 100.5, 101.5, 102, 101, 100.4, 100.8, 98.5}
	lows := []float64{101.4, 100.5, 100, 101, 101.4, 100.6, 100.1, 100.4, 98}
	candles := make([]domain.Candle, len(closes))
	for i := range closes {
		candles[i] = domain.Candle{
			Timestamp: scenarioStart.Add(time.Duration(i) * time.Hour),
			Open:      closes[i] + 0.3,
			High:      closes[i] + 1,
			Low:       lows[i],
			Close:     closes[i],
			Volume:    100,
		}
	}
	candles[8].Volume = 200
	return Scenario{Name: "breakdown", Candles: candles, Expect: []domain.PatternType{domain.PatternBreakdown}}
}

func doubleTopScenario() Scenario {
	closes := []float64{
		100, 102, 104, 106, 108, 110, 108, 106, 104, 102,
		104, 106, 108, 110, 108, 106, 104, 102, 100, 98, 96,
	}
	return Scenario{
		Name:    "double_top",
		Candles: withVolume(FromCloses(closes, 0.5, 100), 18, 180),
		Expect:  []domain.PatternType{domain.PatternDoubleTop},
	}
}

func doubleBottomScenario() Scenario {
	closes := []float64{
		110, 108, 106, 104, 102, 100, 102, 104, 106, 108,
		106, 104, 102, 100, 102, 104, 106, 108, 110, 112, 114,
	}
	return Scenario{
		Name:    "double_bottom",
		Candles: withVolume(FromCloses(closes, 0.5, 100), 18, 180),
		Expect:  []domain.PatternType{domain.PatternDoubleBottom},
	}
}

func headAndShouldersScenario() Scenario {
	closes := []float64{
		100, 103, 106, 109, 106, 103, 106, 110, 114, 110,
		106, 103, 106, 109, 106, 103, 100, 97, 95,
	}
	return Scenario{
		Name:    "head_and_shoulders",
		Candles: withVolume(FromCloses(closes, 0.5, 100), 16, 170),
		Expect:  []domain.PatternType{domain.PatternHeadAndShoulders},
	}
}

// steadyTrend has strictly rising highs and lows, so no fractal pivot exists.
func steadyTrendScenario() Scenario {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return Scenario{Name: "steady_trend", Candles: FromCloses(closes, 0.5, 100)}
}

func quietRangeScenario() Scenario {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	return Scenario{Name: "quiet_range", Candles: FromCloses(closes, 0.5, 100)}
}

// DefaultScenarios returns the built-in labeled fixtures, positives first.
func DefaultScenarios() []Scenario {
	return []Scenario{
		breakoutScenario(),
		breakdownScenario(),
		doubleTopScenario(),
		doubleBottomScenario(),
		headAndShouldersScenario(),
		steadyTrendScenario(),
		quietRangeScenario(),
	}
}
