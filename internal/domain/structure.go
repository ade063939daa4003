package domain

// PivotKind identifies whether a pivot is a local high or low.
type PivotKind string

const (
	PivotHigh PivotKind = "high"
	PivotLow  PivotKind = "low"
)

// LineKind identifies the side of price a level or trendline bounds.
type LineKind string

const (
	Support    LineKind = "support"
	Resistance LineKind = "resistance"
)

// LineKindFor maps a pivot kind to the side of price it defines.
func LineKindFor(k PivotKind) LineKind {
	if k == PivotHigh {
		return Resistance
	}
	return Support
}

// Pivot is a candle whose high or low is a local extremum.
type Pivot struct {
	Index int       // Candle index within the request sequence
	Price float64   // High for PivotHigh, low for PivotLow
	Kind  PivotKind // high or low
}

// Level is a cluster of same-kind pivots treated as one price.
type Level struct {
	Price           float64  // Cluster centroid
	Kind            LineKind // support or resistance
	TouchCount      int      // Number of pivots in the cluster
	Strength        float64  // TouchCount weighted by recency of the last touch
	FirstTouchIndex int      // Earliest pivot index in the cluster
	LastTouchIndex  int      // Latest pivot index in the cluster
}

// Trendline is a fitted line across same-kind pivots, price = Slope*index + Intercept.
type Trendline struct {
	Kind         LineKind
	Slope        float64 // Price change per bar
	Intercept    float64 // Price at index 0
	TouchIndices []int   // Candle indices of the pivots on the line, ascending
	Valid        bool
}

// PriceAt evaluates the line at a candle index.
func (t Trendline) PriceAt(index int) float64 {
	return t.Slope*float64(index) + t.Intercept
}

// FirstIndex returns the earliest touch index, or -1 when there are no touches.
func (t Trendline) FirstIndex() int {
	if len(t.TouchIndices) == 0 {
		return -1
	}
	return t.TouchIndices[0]
}

// LastIndex returns the latest touch index, or -1 when there are no touches.
func (t Trendline) LastIndex() int {
	if len(t.TouchIndices) == 0 {
		return -1
	}
	return t.TouchIndices[len(t.TouchIndices)-1]
}
