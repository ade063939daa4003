package patterns

import (
	"fmt"
	"math"

	"patternScout/internal/domain"
)

type slopeClass int

const (
	slopeFalling slopeClass = iota - 1
	slopeFlat
	slopeRising
)

// triangles pairs every resistance line with every support line.
func (m matcher) triangles() []domain.Pattern {
	var upper, lower []domain.Trendline
	for _, l := range m.in.Trendlines {
		if !l.Valid || len(l.TouchIndices) < 2 {
			continue
		}
		if l.Kind == domain.Resistance {
			upper = append(upper, l)
		} else {
			lower = append(lower, l)
		}
	}

	var out []domain.Pattern
	for _, u := range upper {
		for _, l := range lower {
			if p, ok := m.triangle(u, l); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

func (m matcher) classify(l domain.Trendline) slopeClass {
	ref := (l.PriceAt(l.FirstIndex()) + l.PriceAt(l.LastIndex())) / 2
	if ref == 0 {
		return slopeFlat
	}
	pct := l.Slope / math.Abs(ref) * 100
	switch {
	case math.Abs(pct) <= m.cfg.FlatSlopePct:
		return slopeFlat
	case pct > 0:
		return slopeRising
	default:
		return slopeFalling
	}
}

func (m matcher) triangle(upper, lower domain.Trendline) (domain.Pattern, bool) {
	var t domain.PatternType
	switch uc, lc := m.classify(upper), m.classify(lower); {
	case uc == slopeFlat && lc == slopeRising:
		t = domain.PatternAscendingTriangle
	case uc == slopeFalling && lc == slopeFlat:
		t = domain.PatternDescendingTriangle
	case uc == slopeFalling && lc == slopeRising:
		t = domain.PatternSymmetricalTriangle
	default:
		return domain.Pattern{}, false
	}

	// The lines must share a stretch of time and narrow across it.
	from := maxInt(upper.FirstIndex(), lower.FirstIndex())
	to := minInt(upper.LastIndex(), lower.LastIndex())
	if from >= to {
		return domain.Pattern{}, false
	}
	gapFrom := upper.PriceAt(from) - lower.PriceAt(from)
	gapTo := upper.PriceAt(to) - lower.PriceAt(to)
	if gapFrom <= 0 || gapTo <= 0 || gapTo >= gapFrom {
		return domain.Pattern{}, false
	}
	den := upper.Slope - lower.Slope
	if den >= 0 {
		return domain.Pattern{}, false
	}
	apex := (lower.Intercept - upper.Intercept) / den

	candles := m.in.Candles
	start := minInt(upper.FirstIndex(), lower.FirstIndex())
	end := maxInt(upper.LastIndex(), lower.LastIndex())
	breakIdx := -1
	for i := end + 1; i < len(candles) && float64(i) < apex; i++ {
		c := candles[i].Close
		if c > upper.PriceAt(i) || c < lower.PriceAt(i) {
			breakIdx = i
			break
		}
	}
	if breakIdx >= 0 {
		end = breakIdx
	}

	touches := len(upper.TouchIndices) + len(lower.TouchIndices)
	volume := 0.0
	if breakIdx >= 0 {
		volume = m.volumeScore(m.volumeRatio(breakIdx))
	}
	nu, nl := len(upper.TouchIndices), len(lower.TouchIndices)
	balance := float64(minInt(nu, nl)) / float64(maxInt(nu, nl))
	base := BaseConfidence(m.cfg, m.touchScore(touches), volume, balance)

	desc := fmt.Sprintf("%s between %.2f and %.2f over %d bars",
		triangleName(t), upper.PriceAt(end), lower.PriceAt(end), end-start+1)
	if breakIdx >= 0 {
		desc += fmt.Sprintf(", closed outside at %.2f", candles[breakIdx].Close)
	}

	p := m.pattern(t, start, end, base, desc, domain.TriangleDetails{
		Upper:      upper,
		Lower:      lower,
		ApexIndex:  apex,
		BreakIndex: breakIdx,
	})
	p.SupportingTrendlines = []domain.Trendline{upper, lower}
	return p, true
}

func triangleName(t domain.PatternType) string {
	switch t {
	case domain.PatternAscendingTriangle:
		return "Ascending triangle"
	case domain.PatternDescendingTriangle:
		return "Descending triangle"
	default:
		return "Symmetrical triangle"
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
