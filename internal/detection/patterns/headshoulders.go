package patterns

import (
	"fmt"

	"patternScout/internal/detection/extrema"
	"patternScout/internal/domain"
)

// headAndShoulders scans every run of three consecutive same-kind pivots.
func (m matcher) headAndShoulders() []domain.Pattern {
	var out []domain.Pattern
	highs := extrema.OfKind(m.in.Pivots, domain.PivotHigh)
	for i := 2; i < len(highs); i++ {
		if p, ok := m.headShoulders(highs[i-2], highs[i-1], highs[i], true); ok {
			out = append(out, p)
		}
	}
	lows := extrema.OfKind(m.in.Pivots, domain.PivotLow)
	for i := 2; i < len(lows); i++ {
		if p, ok := m.headShoulders(lows[i-2], lows[i-1], lows[i], false); ok {
			out = append(out, p)
		}
	}
	return out
}

func (m matcher) headShoulders(ls, head, rs domain.Pivot, top bool) (domain.Pattern, bool) {
	candles := m.in.Candles
	prom := m.cfg.MinHeadProminencePct / 100
	if top && (head.Price < ls.Price*(1+prom) || head.Price < rs.Price*(1+prom)) {
		return domain.Pattern{}, false
	}
	if !top && (head.Price > ls.Price*(1-prom) || head.Price > rs.Price*(1-prom)) {
		return domain.Pattern{}, false
	}
	if pctDiff(ls.Price, rs.Price) > m.cfg.EqualTolerancePct {
		return domain.Pattern{}, false
	}

	// Neckline runs through the extremes between the shoulders and the head.
	t1 := extremeBetween(candles, ls.Index, head.Index, !top)
	t2 := extremeBetween(candles, head.Index, rs.Index, !top)
	if t1 < 0 || t2 < 0 {
		return domain.Pattern{}, false
	}
	p1, p2 := candles[t1].Low, candles[t2].Low
	neckKind := domain.Support
	if !top {
		p1, p2 = candles[t1].High, candles[t2].High
		neckKind = domain.Resistance
	}
	slope := (p2 - p1) / float64(t2-t1)
	neck := domain.Trendline{
		Kind:         neckKind,
		Slope:        slope,
		Intercept:    p1 - slope*float64(t1),
		TouchIndices: []int{t1, t2},
		Valid:        true,
	}

	confirm := -1
	for i := rs.Index + 1; i < len(candles); i++ {
		if top && candles[i].High > head.Price || !top && candles[i].Low < head.Price {
			break
		}
		np := neck.PriceAt(i)
		if top && candles[i].Close < np || !top && candles[i].Close > np {
			confirm = i
			break
		}
	}
	if confirm < 0 {
		return domain.Pattern{}, false
	}

	symmetry := timeSymmetry(head.Index-ls.Index, rs.Index-head.Index)
	base := BaseConfidence(m.cfg, m.touchScore(5), m.volumeScore(m.volumeRatio(confirm)), symmetry)

	t, name := domain.PatternHeadAndShoulders, "Head and shoulders"
	if !top {
		t, name = domain.PatternInverseHeadAndShoulders, "Inverse head and shoulders"
	}
	desc := fmt.Sprintf("%s with head %.2f, shoulders %.2f/%.2f, neckline broken at %.2f",
		name, head.Price, ls.Price, rs.Price, neck.PriceAt(confirm))

	p := m.pattern(t, ls.Index, confirm, base, desc, domain.HeadShouldersDetails{
		LeftShoulder:  ls,
		Head:          head,
		RightShoulder: rs,
		Neckline:      neck,
		ConfirmIndex:  confirm,
	})
	p.SupportingTrendlines = []domain.Trendline{neck}
	return p, true
}
