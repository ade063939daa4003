package extrema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patternScout/internal/domain"
)

func candlesFromHL(highs, lows []float64) []domain.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, len(highs))
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		out[i] = domain.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      mid, Close: mid, High: highs[i], Low: lows[i], Volume: 1,
		}
	}
	return out
}

func TestExtract(t *testing.T) {
	highs := []float64{10, 11, 15, 12, 11, 13, 18, 13, 12}
	lows := []float64{9, 8, 12, 10, 7, 11, 14, 10, 11}
	candles := candlesFromHL(highs, lows)

	tests := []struct {
		name string
		k    int
		kind domain.PivotKind
		want []int
	}{
		{"highs radius 1", 1, domain.PivotHigh, []int{2, 6}},
		{"lows radius 1", 1, domain.PivotLow, []int{1, 4, 7}},
		{"highs radius 2", 2, domain.PivotHigh, []int{2, 6}},
		{"lows radius 2", 2, domain.PivotLow, []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(candles, tt.k, tt.kind)
			idx := make([]int, len(got))
			for i, p := range got {
				idx[i] = p.Index
				assert.Equal(t, tt.kind, p.Kind)
			}
			assert.Equal(t, tt.want, idx)
		})
	}
}

func TestExtract_StrictMaximum(t *testing.T) {
	// Equal neighbouring highs are not pivots.
	candles := candlesFromHL([]float64{1, 5, 5, 1, 1}, []float64{0, 0, 0, 0, 0})
	assert.Empty(t, Extract(candles, 1, domain.PivotHigh))
}

func TestExtract_InsufficientData(t *testing.T) {
	candles := candlesFromHL([]float64{1, 2, 1, 2}, []float64{0, 1, 0, 1})

	got := Extract(candles, 2, domain.PivotHigh)
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Extract(candles, 0, domain.PivotLow))
	assert.Empty(t, Extract(nil, 1, domain.PivotLow))
}

func TestExtractAll_MergedByIndex(t *testing.T) {
	highs := []float64{10, 11, 15, 12, 11, 13, 18, 13, 12}
	lows := []float64{9, 8, 12, 10, 7, 11, 14, 10, 11}
	all := ExtractAll(candlesFromHL(highs, lows), 1)

	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Index, all[i].Index)
	}
	assert.Len(t, OfKind(all, domain.PivotHigh), 2)
	assert.Len(t, OfKind(all, domain.PivotLow), 3)
}

func TestExtract_Deterministic(t *testing.T) {
	highs := []float64{3, 4, 7, 4, 3, 6, 9, 2, 5, 4, 3}
	lows := []float64{1, 2, 5, 2, 1, 4, 7, 0, 3, 2, 1}
	candles := candlesFromHL(highs, lows)
	assert.Equal(t, ExtractAll(candles, 1), ExtractAll(candles, 1))
}
