// Package trendlines fits support and resistance lines through same-kind pivots.
package trendlines

import (
	"math"
	"sort"

	"patternScout/internal/domain"
)

// Config controls candidate generation and validation.
type Config struct {
	MaxPivots            int     // Most recent pivots considered when pairing
	TouchTolerancePct    float64 // Pivot distance from a line that still counts as a touch
	ResidualTolerancePct float64 // Mean absolute deviation of touches must stay below this
	BodyTolerancePct     float64 // Allowed body penetration between the first and last touch
	MaxLines             int     // Lines kept per kind
}

// DefaultConfig returns the trendline defaults.
func DefaultConfig() Config {
	return Config{
		MaxPivots:            8,
		TouchTolerancePct:    0.5,
		ResidualTolerancePct: 0.5,
		BodyTolerancePct:     0.25,
		MaxLines:             2,
	}
}

type candidate struct {
	line    domain.Trendline
	touches []domain.Pivot
}

// Build returns the valid trendlines of one pivot kind, best first.
// Pivot lows produce support lines and pivot highs resistance lines.
func Build(candles []domain.Candle, pivots []domain.Pivot, kind domain.PivotKind, cfg Config) []domain.Trendline {
	same := make([]domain.Pivot, 0, len(pivots))
	for _, p := range pivots {
		if p.Kind == kind && p.Index >= 0 && p.Index < len(candles) {
			same = append(same, p)
		}
	}
	sort.SliceStable(same, func(i, j int) bool { return same[i].Index < same[j].Index })
	if len(same) < 2 {
		return []domain.Trendline{}
	}

	recent := same
	if cfg.MaxPivots >= 2 && len(recent) > cfg.MaxPivots {
		recent = recent[len(recent)-cfg.MaxPivots:]
	}
	lineKind := domain.LineKindFor(kind)

	var cands []candidate
	for a := 0; a < len(recent); a++ {
		for b := a + 1; b < len(recent); b++ {
			if c, ok := fitPair(candles, same, recent[a], recent[b], lineKind, cfg); ok {
				cands = append(cands, c)
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		li, lj := cands[i].line, cands[j].line
		if len(li.TouchIndices) != len(lj.TouchIndices) {
			return len(li.TouchIndices) > len(lj.TouchIndices)
		}
		if si, sj := math.Abs(li.Slope), math.Abs(lj.Slope); si != sj {
			return si > sj
		}
		if li.LastIndex() != lj.LastIndex() {
			return li.LastIndex() > lj.LastIndex()
		}
		return li.FirstIndex() < lj.FirstIndex()
	})

	out := make([]domain.Trendline, 0, cfg.MaxLines)
	used := make(map[int]bool)
	for _, c := range cands {
		if cfg.MaxLines > 0 && len(out) >= cfg.MaxLines {
			break
		}
		disjoint := true
		for _, idx := range c.line.TouchIndices {
			if used[idx] {
				disjoint = false
				break
			}
		}
		if !disjoint {
			continue
		}
		for _, idx := range c.line.TouchIndices {
			used[idx] = true
		}
		out = append(out, c.line)
	}
	return out
}

// BuildAll returns support lines followed by resistance lines.
func BuildAll(candles []domain.Candle, pivots []domain.Pivot, cfg Config) []domain.Trendline {
	out := Build(candles, pivots, domain.PivotLow, cfg)
	return append(out, Build(candles, pivots, domain.PivotHigh, cfg)...)
}

// Split separates trendlines by kind, preserving order.
func Split(lines []domain.Trendline) (support, resistance []domain.Trendline) {
	for _, l := range lines {
		if l.Kind == domain.Support {
			support = append(support, l)
		} else {
			resistance = append(resistance, l)
		}
	}
	return support, resistance
}

func fitPair(candles []domain.Candle, same []domain.Pivot, a, b domain.Pivot, kind domain.LineKind, cfg Config) (candidate, bool) {
	slope := (b.Price - a.Price) / float64(b.Index-a.Index)
	intercept := a.Price - slope*float64(a.Index)

	var touches []domain.Pivot
	for _, p := range same {
		if p.Index < a.Index || p.Index > b.Index {
			continue
		}
		if p.Index == a.Index || p.Index == b.Index || withinPct(p.Price, slope*float64(p.Index)+intercept, cfg.TouchTolerancePct) {
			touches = append(touches, p)
		}
	}
	if len(touches) < 2 {
		return candidate{}, false
	}
	if len(touches) >= 3 {
		slope, intercept = LeastSquares(touches)
	}

	line := domain.Trendline{Kind: kind, Slope: slope, Intercept: intercept, Valid: true}
	line.TouchIndices = make([]int, len(touches))
	for i, p := range touches {
		line.TouchIndices[i] = p.Index
	}

	if MeanAbsDeviationPct(line, touches) >= cfg.ResidualTolerancePct {
		return candidate{}, false
	}
	if crossedByBodies(candles, line, cfg.BodyTolerancePct) {
		return candidate{}, false
	}
	return candidate{line: line, touches: touches}, true
}

// LeastSquares fits price = slope*index + intercept over the pivots.
func LeastSquares(ps []domain.Pivot) (slope, intercept float64) {
	n := float64(len(ps))
	var sx, sy, sxx, sxy float64
	for _, p := range ps {
		x := float64(p.Index)
		sx += x
		sy += p.Price
		sxx += x * x
		sxy += x * p.Price
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, sy / n
	}
	slope = (n*sxy - sx*sy) / den
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

// MeanAbsDeviationPct is the mean distance of touches from the line in percent of the
// mean touch price.
func MeanAbsDeviationPct(line domain.Trendline, touches []domain.Pivot) float64 {
	if len(touches) == 0 {
		return 0
	}
	var dev, price float64
	for _, p := range touches {
		dev += math.Abs(p.Price - line.PriceAt(p.Index))
		price += p.Price
	}
	if price == 0 {
		return 0
	}
	return dev / price * 100
}

// crossedByBodies reports whether any candle strictly between the first and last touch
// closes its body through the line by more than tolPct.
func crossedByBodies(candles []domain.Candle, line domain.Trendline, tolPct float64) bool {
	for j := line.FirstIndex() + 1; j < line.LastIndex(); j++ {
		lp := line.PriceAt(j)
		margin := math.Abs(lp) * tolPct / 100
		c := candles[j]
		if line.Kind == domain.Support && c.BodyLow() < lp-margin {
			return true
		}
		if line.Kind == domain.Resistance && c.BodyHigh() > lp+margin {
			return true
		}
	}
	return false
}

func withinPct(price, ref, pct float64) bool {
	if ref == 0 {
		return price == 0
	}
	return math.Abs(price-ref)/math.Abs(ref)*100 <= pct
}
