// Package levels clusters pivots into horizontal support and resistance levels.
package levels

import (
	"math"
	"sort"

	"patternScout/internal/domain"
)

// Config controls level clustering and ranking.
type Config struct {
	TolerancePct float64 // Max deviation of any member from the cluster centroid, in percent
	TopN         int     // Max levels per kind; 0 keeps all
	MinTouches   int     // Clusters with fewer pivots are dropped
	RecencyFloor float64 // Weight of a level last touched at index 0, in [0,1]
}

// DefaultConfig returns the clustering defaults.
func DefaultConfig() Config {
	return Config{
		TolerancePct: 1.0,
		TopN:         5,
		MinTouches:   1,
		RecencyFloor: 0.5,
	}
}

// Detect clusters pivot lows into support and pivot highs into resistance.
// seriesLen is the candle count the pivots were taken from and scales the recency weight.
// The result holds up to TopN levels of each kind ordered by strength descending, ties by
// price ascending.
func Detect(pivots []domain.Pivot, cfg Config, seriesLen int) []domain.Level {
	var highs, lows []domain.Pivot
	for _, p := range pivots {
		if p.Kind == domain.PivotHigh {
			highs = append(highs, p)
		} else {
			lows = append(lows, p)
		}
	}

	out := make([]domain.Level, 0)
	out = append(out, detectKind(lows, domain.Support, cfg, seriesLen)...)
	out = append(out, detectKind(highs, domain.Resistance, cfg, seriesLen)...)
	sortLevels(out)
	return out
}

// Split separates levels by kind, preserving order.
func Split(levels []domain.Level) (support, resistance []domain.Level) {
	support, resistance = []domain.Level{}, []domain.Level{}
	for _, l := range levels {
		if l.Kind == domain.Support {
			support = append(support, l)
		} else {
			resistance = append(resistance, l)
		}
	}
	return support, resistance
}

// RecencyWeight grows linearly from floor at index 0 to 1 at the last candle.
func RecencyWeight(index, seriesLen int, floor float64) float64 {
	if seriesLen <= 0 {
		return 1
	}
	floor = math.Max(0, math.Min(1, floor))
	frac := float64(index+1) / float64(seriesLen)
	if frac > 1 {
		frac = 1
	}
	return floor + (1-floor)*frac
}

func detectKind(pivots []domain.Pivot, kind domain.LineKind, cfg Config, seriesLen int) []domain.Level {
	if len(pivots) == 0 {
		return nil
	}

	levels := make([]domain.Level, 0)
	for _, members := range cluster(pivots, cfg.TolerancePct) {
		if len(members) < cfg.MinTouches {
			continue
		}
		lvl := domain.Level{
			Price:           centroid(members),
			Kind:            kind,
			TouchCount:      len(members),
			FirstTouchIndex: members[0].Index,
			LastTouchIndex:  members[0].Index,
		}
		for _, m := range members[1:] {
			if m.Index < lvl.FirstTouchIndex {
				lvl.FirstTouchIndex = m.Index
			}
			if m.Index > lvl.LastTouchIndex {
				lvl.LastTouchIndex = m.Index
			}
		}
		lvl.Strength = float64(lvl.TouchCount) * RecencyWeight(lvl.LastTouchIndex, seriesLen, cfg.RecencyFloor)
		levels = append(levels, lvl)
	}

	sortLevels(levels)
	if cfg.TopN > 0 && len(levels) > cfg.TopN {
		levels = levels[:cfg.TopN]
	}
	return levels
}

func sortLevels(levels []domain.Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		if levels[i].Strength != levels[j].Strength {
			return levels[i].Strength > levels[j].Strength
		}
		if levels[i].Price != levels[j].Price {
			return levels[i].Price < levels[j].Price
		}
		return levels[i].Kind < levels[j].Kind
	})
}

// cluster groups pivots bottom-up. Pivots start as singletons ordered by price and the
// adjacent pair with the lowest merge cost is merged until the cheapest cost exceeds
// tolPct. The merge sequence is independent of tolPct, so partitions are nested across
// tolerances.
func cluster(pivots []domain.Pivot, tolPct float64) [][]domain.Pivot {
	sorted := make([]domain.Pivot, len(pivots))
	copy(sorted, pivots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Price != sorted[j].Price {
			return sorted[i].Price < sorted[j].Price
		}
		return sorted[i].Index < sorted[j].Index
	})

	groups := make([][]domain.Pivot, len(sorted))
	for i := range sorted {
		groups[i] = sorted[i : i+1 : i+1]
	}

	for len(groups) > 1 {
		best, bestCost := -1, math.Inf(1)
		for i := 0; i+1 < len(groups); i++ {
			if c := mergeCost(groups[i], groups[i+1]); c < bestCost {
				best, bestCost = i, c
			}
		}
		if best < 0 || bestCost > tolPct {
			break
		}
		merged := make([]domain.Pivot, 0, len(groups[best])+len(groups[best+1]))
		merged = append(merged, groups[best]...)
		merged = append(merged, groups[best+1]...)
		groups[best] = merged
		groups = append(groups[:best+1], groups[best+2:]...)
	}
	return groups
}

// mergeCost is the largest deviation, in percent of the centroid, of any member of the
// union of two price-adjacent groups. Members are sorted by price, so the extremes decide.
func mergeCost(a, b []domain.Pivot) float64 {
	lo, hi := a[0].Price, b[len(b)-1].Price
	c := (sum(a) + sum(b)) / float64(len(a)+len(b))
	dev := math.Max(c-lo, hi-c)
	if c == 0 {
		if dev == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return dev / math.Abs(c) * 100
}

func centroid(members []domain.Pivot) float64 {
	return sum(members) / float64(len(members))
}

func sum(ps []domain.Pivot) float64 {
	s := 0.0
	for _, p := range ps {
		s += p.Price
	}
	return s
}
