package patterns

import (
	"fmt"

	"patternScout/internal/domain"
)

// levelBreaks finds closes through resistance (breakout) and support (breakdown).
func (m matcher) levelBreaks() []domain.Pattern {
	var out []domain.Pattern
	for _, lvl := range m.in.Resistance {
		out = append(out, m.breaksOf(lvl, domain.PatternBreakout)...)
	}
	for _, lvl := range m.in.Support {
		out = append(out, m.breaksOf(lvl, domain.PatternBreakdown)...)
	}
	return out
}

func (m matcher) breaksOf(lvl domain.Level, t domain.PatternType) []domain.Pattern {
	candles := m.in.Candles
	up := t == domain.PatternBreakout
	threshold := lvl.Price * (1 + m.cfg.BreakPct/100)
	if !up {
		threshold = lvl.Price * (1 - m.cfg.BreakPct/100)
	}

	beyond := func(close float64) bool {
		if up {
			return close > threshold
		}
		return close < threshold
	}
	behind := func(close float64) bool {
		if up {
			return close <= lvl.Price
		}
		return close >= lvl.Price
	}
	// A confirmation close may sit on the level but not back through it.
	fellBack := func(close float64) bool {
		if up {
			return close < lvl.Price
		}
		return close > lvl.Price
	}

	var out []domain.Pattern
	start := lvl.FirstTouchIndex + 1
	if start < 1 {
		start = 1
	}
	for i := start; i < len(candles); i++ {
		if !behind(candles[i-1].Close) || !beyond(candles[i].Close) {
			continue
		}
		ratio := m.volumeRatio(i)
		if ratio < m.cfg.VolumeMultiplier {
			continue
		}

		held, failed := 0, false
		for j := i + 1; j <= i+m.cfg.ConfirmationBars && j < len(candles); j++ {
			if fellBack(candles[j].Close) {
				failed = true
				break
			}
			held++
		}
		if failed {
			continue
		}

		penetration := pctDiff(candles[i].Close, lvl.Price)
		quality := 0.5 * clamp01(penetration/m.cfg.FullBreakPct)
		if m.cfg.ConfirmationBars > 0 {
			quality += 0.5 * float64(held) / float64(m.cfg.ConfirmationBars)
		} else {
			quality += 0.5
		}
		base := BaseConfidence(m.cfg, m.touchScore(lvl.TouchCount), m.volumeScore(ratio), quality)

		dir := "above resistance"
		if !up {
			dir = "below support"
		}
		desc := fmt.Sprintf("Close %.2f broke %s %.2f on %.1fx average volume", candles[i].Close, dir, lvl.Price, ratio)

		p := m.pattern(t, lvl.FirstTouchIndex, i, base, desc, domain.LevelBreakDetails{
			LevelPrice:  lvl.Price,
			BreakIndex:  i,
			ClosePrice:  candles[i].Close,
			VolumeRatio: ratio,
			HoldingBars: held,
		})
		p.SupportingLevels = []domain.Level{lvl}
		out = append(out, p)
	}
	return out
}
