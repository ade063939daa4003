package patterns

import (
	"fmt"
	"math"

	"patternScout/internal/detection/extrema"
	"patternScout/internal/domain"
)

// doublePeaks finds double tops on consecutive pivot highs and double bottoms on
// consecutive pivot lows.
func (m matcher) doublePeaks() []domain.Pattern {
	var out []domain.Pattern
	highs := extrema.OfKind(m.in.Pivots, domain.PivotHigh)
	for i := 1; i < len(highs); i++ {
		if p, ok := m.doublePeak(highs[i-1], highs[i], true); ok {
			out = append(out, p)
		}
	}
	lows := extrema.OfKind(m.in.Pivots, domain.PivotLow)
	for i := 1; i < len(lows); i++ {
		if p, ok := m.doublePeak(lows[i-1], lows[i], false); ok {
			out = append(out, p)
		}
	}
	return out
}

func (m matcher) doublePeak(first, second domain.Pivot, top bool) (domain.Pattern, bool) {
	candles := m.in.Candles
	if second.Index-first.Index < 2 || pctDiff(first.Price, second.Price) > m.cfg.EqualTolerancePct {
		return domain.Pattern{}, false
	}

	// Neckline is the deepest extreme strictly between the peaks.
	neckIdx := extremeBetween(candles, first.Index, second.Index, !top)
	if neckIdx < 0 {
		return domain.Pattern{}, false
	}
	neck := candles[neckIdx].Low
	peak := math.Min(first.Price, second.Price)
	if !top {
		neck = candles[neckIdx].High
		peak = math.Max(first.Price, second.Price)
	}
	retrace := math.Abs(peak-neck) / math.Max(first.Price, second.Price) * 100
	if retrace < m.cfg.MinRetracementPct {
		return domain.Pattern{}, false
	}

	// Confirmation: a close beyond the neckline before price exceeds the peaks.
	limit := math.Max(first.Price, second.Price) * (1 + m.cfg.EqualTolerancePct/100)
	if !top {
		limit = math.Min(first.Price, second.Price) * (1 - m.cfg.EqualTolerancePct/100)
	}
	confirm := -1
	for i := second.Index + 1; i < len(candles); i++ {
		if top && candles[i].High > limit || !top && candles[i].Low < limit {
			break
		}
		if top && candles[i].Close < neck || !top && candles[i].Close > neck {
			confirm = i
			break
		}
	}
	if confirm < 0 {
		return domain.Pattern{}, false
	}

	touches := 2
	if lvl, ok := m.levelNear(first.Price, top); ok && lvl.TouchCount > touches {
		touches = lvl.TouchCount
	}
	symmetry := timeSymmetry(neckIdx-first.Index, second.Index-neckIdx)
	base := BaseConfidence(m.cfg, m.touchScore(touches), m.volumeScore(m.volumeRatio(confirm)), symmetry)

	t, name, side := domain.PatternDoubleTop, "Double top", "below"
	if !top {
		t, name, side = domain.PatternDoubleBottom, "Double bottom", "above"
	}
	desc := fmt.Sprintf("%s at %.2f/%.2f, close %s neckline %.2f after %.1f%% retracement",
		name, first.Price, second.Price, side, neck, retrace)

	p := m.pattern(t, first.Index, confirm, base, desc, domain.DoublePeakDetails{
		First:        first,
		Second:       second,
		Neckline:     neck,
		NecklineIdx:  neckIdx,
		ConfirmIndex: confirm,
		Retracement:  retrace,
	})
	if lvl, ok := m.levelNear(first.Price, top); ok {
		p.SupportingLevels = []domain.Level{lvl}
	}
	return p, true
}

// levelNear returns the strongest level on the peak side within EqualTolerancePct of price.
func (m matcher) levelNear(price float64, resistance bool) (domain.Level, bool) {
	levels := m.in.Support
	if resistance {
		levels = m.in.Resistance
	}
	for _, l := range levels {
		if pctDiff(l.Price, price) <= m.cfg.EqualTolerancePct {
			return l, true
		}
	}
	return domain.Level{}, false
}

// extremeBetween returns the index of the highest high (or lowest low) strictly between
// from and to, or -1 when the range is empty.
func extremeBetween(candles []domain.Candle, from, to int, highest bool) int {
	best := -1
	for i := from + 1; i < to && i < len(candles); i++ {
		if best < 0 ||
			highest && candles[i].High > candles[best].High ||
			!highest && candles[i].Low < candles[best].Low {
			best = i
		}
	}
	return best
}
