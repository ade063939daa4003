package domain

// PatternType enumerates every chart pattern the matcher can emit.
type PatternType string

const (
	PatternBreakout                PatternType = "breakout"
	PatternBreakdown               PatternType = "breakdown"
	PatternDoubleTop               PatternType = "double_top"
	PatternDoubleBottom            PatternType = "double_bottom"
	PatternHeadAndShoulders        PatternType = "head_and_shoulders"
	PatternInverseHeadAndShoulders PatternType = "inverse_head_and_shoulders"
	PatternAscendingTriangle       PatternType = "ascending_triangle"
	PatternDescendingTriangle      PatternType = "descending_triangle"
	PatternSymmetricalTriangle     PatternType = "symmetrical_triangle"
)

// PatternTypes lists every pattern type in a stable order.
func PatternTypes() []PatternType {
	return []PatternType{
		PatternBreakout, PatternBreakdown,
		PatternDoubleTop, PatternDoubleBottom,
		PatternHeadAndShoulders, PatternInverseHeadAndShoulders,
		PatternAscendingTriangle, PatternDescendingTriangle, PatternSymmetricalTriangle,
	}
}

// PatternFamily groups pattern types that share a details payload.
type PatternFamily string

const (
	FamilyLevelBreak    PatternFamily = "level_break"
	FamilyDoublePeak    PatternFamily = "double_peak"
	FamilyHeadShoulders PatternFamily = "head_shoulders"
	FamilyTriangle      PatternFamily = "triangle"
)

// Family returns the payload family of the pattern type. Unknown types
// return an empty family.
func (p PatternType) Family() PatternFamily {
	switch p {
	case PatternBreakout, PatternBreakdown:
		return FamilyLevelBreak
	case PatternDoubleTop, PatternDoubleBottom:
		return FamilyDoublePeak
	case PatternHeadAndShoulders, PatternInverseHeadAndShoulders:
		return FamilyHeadShoulders
	case PatternAscendingTriangle, PatternDescendingTriangle, PatternSymmetricalTriangle:
		return FamilyTriangle
	}
	return ""
}

// Bullish reports the directional bias conventionally attached to the type.
// Symmetrical triangles are neutral and report false.
func (p PatternType) Bullish() bool {
	switch p {
	case PatternBreakout, PatternDoubleBottom, PatternInverseHeadAndShoulders, PatternAscendingTriangle:
		return true
	}
	return false
}

// PatternDetails is the type-specific payload of a Pattern. The set of
// implementations is closed to this package.
type PatternDetails interface {
	Family() PatternFamily
	sealed()
}

// LevelBreakDetails describes a close through a horizontal level.
type LevelBreakDetails struct {
	LevelPrice  float64 // Price of the broken level
	BreakIndex  int     // Candle that closed through the level
	ClosePrice  float64 // Close of the break candle
	VolumeRatio float64 // Break volume over trailing average volume
	HoldingBars int     // Confirmation candles that held beyond the level
}

// DoublePeakDetails describes a double top or bottom.
type DoublePeakDetails struct {
	First        Pivot   // First peak (or trough)
	Second       Pivot   // Second peak (or trough)
	Neckline     float64 // Intervening extreme that must be broken
	NecklineIdx  int     // Candle index of the intervening extreme
	ConfirmIndex int     // Candle whose close broke the neckline
	Retracement  float64 // Depth of the retracement in percent of the peaks
}

// HeadShouldersDetails describes a head-and-shoulders formation.
type HeadShouldersDetails struct {
	LeftShoulder  Pivot
	Head          Pivot
	RightShoulder Pivot
	Neckline      Trendline // Line through the two intervening extremes
	ConfirmIndex  int       // Candle whose close broke the neckline
}

// TriangleDetails describes a converging pair of trendlines.
type TriangleDetails struct {
	Upper      Trendline
	Lower      Trendline
	ApexIndex  float64 // Fractional bar index where the lines meet
	BreakIndex int     // First close outside the triangle, -1 if none
}

func (LevelBreakDetails) Family() PatternFamily    { return FamilyLevelBreak }
func (DoublePeakDetails) Family() PatternFamily    { return FamilyDoublePeak }
func (HeadShouldersDetails) Family() PatternFamily { return FamilyHeadShoulders }
func (TriangleDetails) Family() PatternFamily      { return FamilyTriangle }

func (LevelBreakDetails) sealed()    {}
func (DoublePeakDetails) sealed()    {}
func (HeadShouldersDetails) sealed() {}
func (TriangleDetails) sealed()      {}

// Pattern is a detected chart pattern over a span of candles.
type Pattern struct {
	Type                 PatternType
	StartIndex           int
	EndIndex             int
	Confidence           float64 // Final confidence, 0..100
	BaseConfidence       float64 // Rule-based confidence before model correction, 0..100
	Description          string
	SupportingLevels     []Level
	SupportingTrendlines []Trendline
	Details              PatternDetails
	Features             FeatureVector
	Score                ScoreOutcome
}

// Overlaps reports whether the two patterns share at least one candle.
func (p Pattern) Overlaps(o Pattern) bool {
	return p.StartIndex <= o.EndIndex && o.StartIndex <= p.EndIndex
}
