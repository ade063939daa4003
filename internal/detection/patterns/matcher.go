// Package patterns matches named chart patterns against pivots, levels and trendlines.
package patterns

import (
	"math"
	"sort"

	"patternScout/internal/detection/indicators"
	"patternScout/internal/domain"
)

// Config holds every matcher threshold. Percentages are in percent of price.
type Config struct {
	VolumeMultiplier float64 // Break volume must reach this multiple of the trailing average
	VolumeLookback   int     // Trailing candles averaged for volume, break candle excluded
	ConfirmationBars int     // Candles after a break that must hold beyond the level
	BreakPct         float64 // Close must clear the level by this much

	EqualTolerancePct    float64 // Twin peaks or shoulders must agree within this
	MinRetracementPct    float64 // Minimum depth between double-top/bottom peaks
	MinHeadProminencePct float64 // Head must exceed both shoulders by this much
	FlatSlopePct         float64 // Trendline slope per bar at or below this is flat

	FullTouches     int     // Touch count that earns the full touch score
	FullVolumeRatio float64 // Volume ratio that earns the full volume score
	FullBreakPct    float64 // Penetration that earns the full break quality score

	TouchWeight    float64
	VolumeWeight   float64
	SymmetryWeight float64
	BaseFloor      float64 // Confidence of a match with all component scores at zero
}

// DefaultConfig returns the matcher defaults.
func DefaultConfig() Config {
	return Config{
		VolumeMultiplier:     1.5,
		VolumeLookback:       20,
		ConfirmationBars:     2,
		BreakPct:             0,
		EqualTolerancePct:    3,
		MinRetracementPct:    3,
		MinHeadProminencePct: 2,
		FlatSlopePct:         0.05,
		FullTouches:          4,
		FullVolumeRatio:      3,
		FullBreakPct:         1,
		TouchWeight:          0.40,
		VolumeWeight:         0.35,
		SymmetryWeight:       0.25,
		BaseFloor:            35,
	}
}

// Input is the intermediate state of one detection call.
type Input struct {
	Candles    []domain.Candle
	Pivots     []domain.Pivot
	Support    []domain.Level
	Resistance []domain.Level
	Trendlines []domain.Trendline
}

// minCandles is the shortest sequence any matcher can use.
const minCandles = 3

// Match runs every matcher and returns deduplicated patterns ordered by start, end and type.
// Too little data yields an empty slice.
func Match(in Input, cfg Config) []domain.Pattern {
	if len(in.Candles) < minCandles {
		return []domain.Pattern{}
	}
	m := matcher{in: in, cfg: cfg, volumes: indicators.Volumes(in.Candles)}

	var found []domain.Pattern
	found = append(found, m.levelBreaks()...)
	found = append(found, m.doublePeaks()...)
	found = append(found, m.headAndShoulders()...)
	found = append(found, m.triangles()...)

	out := Dedupe(found)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StartIndex != b.StartIndex {
			return a.StartIndex < b.StartIndex
		}
		if a.EndIndex != b.EndIndex {
			return a.EndIndex < b.EndIndex
		}
		return a.Type < b.Type
	})
	return out
}

// Dedupe keeps, per pattern type, the highest-confidence instance among overlapping spans.
func Dedupe(ps []domain.Pattern) []domain.Pattern {
	ranked := make([]domain.Pattern, len(ps))
	copy(ranked, ps)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.StartIndex != b.StartIndex {
			return a.StartIndex < b.StartIndex
		}
		return a.EndIndex < b.EndIndex
	})

	kept := make([]domain.Pattern, 0, len(ranked))
	for _, p := range ranked {
		overlaps := false
		for _, k := range kept {
			if k.Type == p.Type && k.Overlaps(p) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, p)
		}
	}
	return kept
}

type matcher struct {
	in      Input
	cfg     Config
	volumes []float64
}

// volumeRatio is the volume at i over the trailing average before i.
func (m matcher) volumeRatio(i int) float64 {
	avg := indicators.TrailingMean(m.volumes, i, m.cfg.VolumeLookback)
	if avg <= 0 {
		if m.volumes[i] > 0 {
			return m.cfg.FullVolumeRatio
		}
		return 0
	}
	return m.volumes[i] / avg
}

// BaseConfidence combines the component scores into a 0..100 integer confidence.
func BaseConfidence(cfg Config, touch, volume, symmetry float64) float64 {
	sum := cfg.TouchWeight*clamp01(touch) + cfg.VolumeWeight*clamp01(volume) + cfg.SymmetryWeight*clamp01(symmetry)
	return math.Round(clamp(cfg.BaseFloor+(100-cfg.BaseFloor)*sum, 0, 100))
}

func (m matcher) touchScore(touches int) float64 {
	if m.cfg.FullTouches <= 0 {
		return 1
	}
	return float64(touches) / float64(m.cfg.FullTouches)
}

func (m matcher) volumeScore(ratio float64) float64 {
	if m.cfg.FullVolumeRatio <= 1 {
		if ratio >= 1 {
			return 1
		}
		return 0
	}
	return (ratio - 1) / (m.cfg.FullVolumeRatio - 1)
}

// timeSymmetry is 1 when both legs have equal length and falls toward 0 as they diverge.
func timeSymmetry(left, right int) float64 {
	if left <= 0 || right <= 0 {
		return 0
	}
	return 1 - math.Abs(float64(left-right))/float64(left+right)
}

func (m matcher) pattern(t domain.PatternType, start, end int, base float64, desc string, details domain.PatternDetails) domain.Pattern {
	return domain.Pattern{
		Type:           t,
		StartIndex:     start,
		EndIndex:       end,
		Confidence:     base,
		BaseConfidence: base,
		Description:    desc,
		Details:        details,
		Score:          domain.Fallback(base, "unscored"),
	}
}

func pctDiff(a, b float64) float64 {
	m := math.Min(math.Abs(a), math.Abs(b))
	if m == 0 {
		return math.Inf(1)
	}
	return math.Abs(a-b) / m * 100
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
