package domain

// Feature positions within a FeatureVector. The order is part of the
// model artifact contract and must not change.
const (
	FeatureVolatility = iota
	FeatureVolumeRatio
	FeatureLevelStrength
	FeatureSlope
	FeatureBarsSince
	FeatureMomentum
	FeatureSpan

	NumFeatures
)

// FeatureNames holds the stable feature names, indexed like FeatureVector.
var FeatureNames = [NumFeatures]string{
	"volatility_pct",
	"volume_ratio",
	"level_strength",
	"slope_pct",
	"bars_since",
	"momentum_rsi",
	"span_bars",
}

// FeatureVector is the fixed-order numeric description of a pattern.
type FeatureVector [NumFeatures]float64

// Map returns the features keyed by name.
func (f FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, NumFeatures)
	for i, name := range FeatureNames {
		out[name] = f[i]
	}
	return out
}

// Slice returns a copy of the features as a slice.
func (f FeatureVector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, f[:])
	return out
}
