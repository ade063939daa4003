package domain

// ResultSchemaVersion is bumped whenever the DetectionResult shape changes.
const ResultSchemaVersion = 1

// DetectionResult is the stable output shape consumed by formatting and UI code.
type DetectionResult struct {
	SchemaVersion int               `json:"schema_version"`
	Symbol        string            `json:"symbol"`
	Interval      Interval          `json:"interval"`
	Detected      []DetectedPattern `json:"detected"`
	ActiveLevels  ActiveLevels      `json:"active_levels"`
	Trendlines    []TrendlineOut    `json:"trendlines"`
}

// DetectedPattern is the serialized form of a Pattern.
type DetectedPattern struct {
	Type        PatternType `json:"type"`
	StartCandle int         `json:"start_candle"`
	EndCandle   int         `json:"end_candle"`
	Confidence  float64     `json:"confidence"`
	Description string      `json:"description"`
}

// ActiveLevels lists level prices by side, strongest first.
type ActiveLevels struct {
	Support    []float64 `json:"support"`
	Resistance []float64 `json:"resistance"`
}

// TrendlineOut is the serialized form of a Trendline.
type TrendlineOut struct {
	Kind         LineKind `json:"kind"`
	Slope        float64  `json:"slope"`
	Intercept    float64  `json:"intercept"`
	TouchIndices []int    `json:"touch_indices"`
}

// EmptyResult returns a well-formed result with no findings.
func EmptyResult(symbol string, interval Interval) *DetectionResult {
	return &DetectionResult{
		SchemaVersion: ResultSchemaVersion,
		Symbol:        symbol,
		Interval:      interval,
		Detected:      []DetectedPattern{},
		ActiveLevels:  ActiveLevels{Support: []float64{}, Resistance: []float64{}},
		Trendlines:    []TrendlineOut{},
	}
}
