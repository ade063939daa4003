package patterns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patternScout/internal/domain"
)

func flat(n int, price, volume float64) []domain.Candle {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, n)
	for i := range out {
		out[i] = domain.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      price, High: price + 0.5, Low: price - 0.5, Close: price, Volume: volume,
		}
	}
	return out
}

func set(c *domain.Candle, close, high, low float64) {
	c.Open, c.Close, c.High, c.Low = close, close, high, low
}

func findType(ps []domain.Pattern, t domain.PatternType) (domain.Pattern, bool) {
	for _, p := range ps {
		if p.Type == t {
			return p, true
		}
	}
	return domain.Pattern{}, false
}

func breakoutFixture() ([]domain.Candle, domain.Level) {
	candles := flat(9, 99, 100)
	for i, c := range []float64{98.5, 99.2, 99.6, 98.8, 99.4, 98.9, 99.5, 99.1} {
		set(&candles[i], c, c+0.4, c-0.6)
	}
	set(&candles[2], 99.6, 100, 99.0)
	set(&candles[8], 102, 102.5, 99.5)
	candles[8].Volume = 200
	lvl := domain.Level{Price: 100, Kind: domain.Resistance, TouchCount: 2, Strength: 1.4, FirstTouchIndex: 2, LastTouchIndex: 6}
	return candles, lvl
}

func TestMatch_Breakout(t *testing.T) {
	candles, lvl := breakoutFixture()
	got := Match(Input{Candles: candles, Resistance: []domain.Level{lvl}}, DefaultConfig())

	p, ok := findType(got, domain.PatternBreakout)
	require.True(t, ok, "expected a breakout, got %+v", got)
	assert.Equal(t, 2, p.StartIndex)
	assert.Equal(t, 8, p.EndIndex)
	assert.GreaterOrEqual(t, p.Confidence, 35.0)
	assert.LessOrEqual(t, p.Confidence, 100.0)
	assert.Equal(t, p.Confidence, p.BaseConfidence)
	assert.Equal(t, domain.FamilyLevelBreak, p.Details.Family())

	d, ok := p.Details.(domain.LevelBreakDetails)
	require.True(t, ok)
	assert.Equal(t, 8, d.BreakIndex)
	assert.InDelta(t, 2.0, d.VolumeRatio, 1e-9)
	assert.Equal(t, []domain.Level{lvl}, p.SupportingLevels)
}

func TestMatch_BreakoutNeedsVolume(t *testing.T) {
	candles, lvl := breakoutFixture()
	candles[8].Volume = 140

	got := Match(Input{Candles: candles, Resistance: []domain.Level{lvl}}, DefaultConfig())
	_, ok := findType(got, domain.PatternBreakout)
	assert.False(t, ok)
}

func TestMatch_BreakoutMustHold(t *testing.T) {
	candles, lvl := breakoutFixture()
	extra := flat(2, 99, 100)
	extra[0].Timestamp = candles[8].Timestamp.Add(time.Hour)
	extra[1].Timestamp = candles[8].Timestamp.Add(2 * time.Hour)
	candles = append(candles, extra...)

	got := Match(Input{Candles: candles, Resistance: []domain.Level{lvl}}, DefaultConfig())
	_, ok := findType(got, domain.PatternBreakout)
	assert.False(t, ok, "close back below the level must cancel the breakout")
}

func TestMatch_Breakdown(t *testing.T) {
	candles := flat(10, 101, 100)
	set(&candles[3], 100.5, 101, 100)
	set(&candles[9], 97, 100.2, 96.5)
	candles[9].Volume = 300
	lvl := domain.Level{Price: 100, Kind: domain.Support, TouchCount: 3, FirstTouchIndex: 3, LastTouchIndex: 3}

	got := Match(Input{Candles: candles, Support: []domain.Level{lvl}}, DefaultConfig())
	p, ok := findType(got, domain.PatternBreakdown)
	require.True(t, ok)
	assert.Equal(t, 3, p.StartIndex)
	assert.Equal(t, 9, p.EndIndex)
}

func doubleTopFixture() ([]domain.Candle, []domain.Pivot) {
	candles := flat(14, 104, 100)
	set(&candles[3], 108, 110, 107)
	set(&candles[6], 101, 102, 100)
	set(&candles[9], 108, 109.5, 107)
	set(&candles[10], 103, 104, 102)
	set(&candles[11], 102, 103, 101)
	set(&candles[12], 98, 101, 97.5)
	candles[12].Volume = 250
	return candles, []domain.Pivot{
		{Index: 3, Price: 110, Kind: domain.PivotHigh},
		{Index: 6, Price: 100, Kind: domain.PivotLow},
		{Index: 9, Price: 109.5, Kind: domain.PivotHigh},
	}
}

// mirror reflects prices around 100 so tops become bottoms and resistance becomes support.
func mirror(candles []domain.Candle) []domain.Candle {
	out := make([]domain.Candle, len(candles))
	for i, c := range candles {
		out[i] = c
		out[i].Open, out[i].Close = 200-c.Open, 200-c.Close
		out[i].High, out[i].Low = 200-c.Low, 200-c.High
	}
	return out
}

func mirrorPivots(pivots []domain.Pivot) []domain.Pivot {
	out := make([]domain.Pivot, len(pivots))
	for i, p := range pivots {
		out[i] = domain.Pivot{Index: p.Index, Price: 200 - p.Price, Kind: domain.PivotHigh}
		if p.Kind == domain.PivotHigh {
			out[i].Kind = domain.PivotLow
		}
	}
	return out
}

func TestMatch_DoubleTop(t *testing.T) {
	candles, pivots := doubleTopFixture()

	got := Match(Input{Candles: candles, Pivots: pivots}, DefaultConfig())
	p, ok := findType(got, domain.PatternDoubleTop)
	require.True(t, ok, "got %+v", got)
	assert.Equal(t, 3, p.StartIndex)
	assert.Equal(t, 12, p.EndIndex)

	d := p.Details.(domain.DoublePeakDetails)
	assert.Equal(t, 6, d.NecklineIdx)
	assert.Equal(t, 100.0, d.Neckline)
	assert.Greater(t, d.Retracement, 3.0)
}

func TestMatch_DoubleTopRejectsUnequalPeaks(t *testing.T) {
	candles := flat(14, 104, 100)
	set(&candles[6], 101, 102, 100)
	set(&candles[12], 98, 101, 97.5)
	pivots := []domain.Pivot{
		{Index: 3, Price: 110, Kind: domain.PivotHigh},
		{Index: 9, Price: 120, Kind: domain.PivotHigh},
	}
	candles[3].High, candles[9].High = 110, 120

	got := Match(Input{Candles: candles, Pivots: pivots}, DefaultConfig())
	_, ok := findType(got, domain.PatternDoubleTop)
	assert.False(t, ok)
}

func headShouldersFixture() ([]domain.Candle, []domain.Pivot) {
	candles := flat(18, 103, 100)
	set(&candles[3], 104, 105, 103)
	set(&candles[5], 101, 102, 100)
	set(&candles[8], 110, 112, 108)
	set(&candles[11], 101.5, 102.5, 100.5)
	set(&candles[13], 104, 105.5, 103)
	set(&candles[16], 99, 101.5, 98.5)
	return candles, []domain.Pivot{
		{Index: 3, Price: 105, Kind: domain.PivotHigh},
		{Index: 8, Price: 112, Kind: domain.PivotHigh},
		{Index: 13, Price: 105.5, Kind: domain.PivotHigh},
	}
}

func TestMatch_HeadAndShoulders(t *testing.T) {
	candles, pivots := headShouldersFixture()

	got := Match(Input{Candles: candles, Pivots: pivots}, DefaultConfig())
	p, ok := findType(got, domain.PatternHeadAndShoulders)
	require.True(t, ok, "got %+v", got)
	assert.Equal(t, 3, p.StartIndex)
	assert.Equal(t, 16, p.EndIndex)

	d := p.Details.(domain.HeadShouldersDetails)
	assert.Equal(t, []int{5, 11}, d.Neckline.TouchIndices)
	assert.Equal(t, 112.0, d.Head.Price)
	require.Len(t, p.SupportingTrendlines, 1)
}

func TestMatch_BullishReversals(t *testing.T) {
	dtCandles, dtPivots := doubleTopFixture()
	hsCandles, hsPivots := headShouldersFixture()

	tests := []struct {
		name      string
		candles   []domain.Candle
		pivots    []domain.Pivot
		want      domain.PatternType
		wantStart int
		wantEnd   int
		check     func(t *testing.T, p domain.Pattern)
	}{
		{
			name:      "double bottom",
			candles:   mirror(dtCandles),
			pivots:    mirrorPivots(dtPivots),
			want:      domain.PatternDoubleBottom,
			wantStart: 3,
			wantEnd:   12,
			check: func(t *testing.T, p domain.Pattern) {
				d := p.Details.(domain.DoublePeakDetails)
				assert.Equal(t, 6, d.NecklineIdx)
				assert.Equal(t, 100.0, d.Neckline)
				assert.Equal(t, domain.PivotLow, d.First.Kind)
				assert.Equal(t, 12, d.ConfirmIndex)
			},
		},
		{
			name:      "inverse head and shoulders",
			candles:   mirror(hsCandles),
			pivots:    mirrorPivots(hsPivots),
			want:      domain.PatternInverseHeadAndShoulders,
			wantStart: 3,
			wantEnd:   16,
			check: func(t *testing.T, p domain.Pattern) {
				d := p.Details.(domain.HeadShouldersDetails)
				assert.Equal(t, []int{5, 11}, d.Neckline.TouchIndices)
				assert.Equal(t, 88.0, d.Head.Price)
				assert.Equal(t, domain.Resistance, d.Neckline.Kind)
				require.Len(t, p.SupportingTrendlines, 1)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(Input{Candles: tt.candles, Pivots: tt.pivots}, DefaultConfig())
			p, ok := findType(got, tt.want)
			require.True(t, ok, "got %+v", got)
			assert.Equal(t, tt.wantStart, p.StartIndex)
			assert.Equal(t, tt.wantEnd, p.EndIndex)
			tt.check(t, p)
		})
	}
}

func TestMatch_AscendingTriangle(t *testing.T) {
	candles := flat(18, 107, 100)
	set(&candles[17], 111, 111.5, 108.8)
	upper := domain.Trendline{Kind: domain.Resistance, Slope: 0, Intercept: 110, TouchIndices: []int{2, 8, 14}, Valid: true}
	lower := domain.Trendline{Kind: domain.Support, Slope: 0.5, Intercept: 100, TouchIndices: []int{4, 10}, Valid: true}
	for i := 15; i < 17; i++ {
		set(&candles[i], 109.2, 109.6, 108.9)
	}

	got := Match(Input{Candles: candles, Trendlines: []domain.Trendline{upper, lower}}, DefaultConfig())
	p, ok := findType(got, domain.PatternAscendingTriangle)
	require.True(t, ok, "got %+v", got)
	assert.Equal(t, 2, p.StartIndex)
	assert.Equal(t, 17, p.EndIndex)

	d := p.Details.(domain.TriangleDetails)
	assert.Equal(t, 17, d.BreakIndex)
	assert.InDelta(t, 20.0, d.ApexIndex, 1e-9)
}

func TestMatch_FallingAndSymmetricalTriangles(t *testing.T) {
	descending := flat(18, 93, 100)
	for i := 15; i < 17; i++ {
		set(&descending[i], 90.8, 91.1, 90.4)
	}
	set(&descending[17], 89, 91.2, 88.5)

	tests := []struct {
		name      string
		candles   []domain.Candle
		upper     domain.Trendline
		lower     domain.Trendline
		want      domain.PatternType
		wantStart int
		wantEnd   int
		wantBreak int
		wantApex  float64
	}{
		{
			name:      "falling resistance over flat support",
			candles:   descending,
			upper:     domain.Trendline{Kind: domain.Resistance, Slope: -0.5, Intercept: 100, TouchIndices: []int{4, 10}, Valid: true},
			lower:     domain.Trendline{Kind: domain.Support, Slope: 0, Intercept: 90, TouchIndices: []int{2, 8, 14}, Valid: true},
			want:      domain.PatternDescendingTriangle,
			wantStart: 2,
			wantEnd:   17,
			wantBreak: 17,
			wantApex:  20,
		},
		{
			name:      "converging pair without a break",
			candles:   flat(18, 105, 100),
			upper:     domain.Trendline{Kind: domain.Resistance, Slope: -0.3, Intercept: 110, TouchIndices: []int{2, 8, 14}, Valid: true},
			lower:     domain.Trendline{Kind: domain.Support, Slope: 0.3, Intercept: 100, TouchIndices: []int{4, 10}, Valid: true},
			want:      domain.PatternSymmetricalTriangle,
			wantStart: 2,
			wantEnd:   14,
			wantBreak: -1,
			wantApex:  50.0 / 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(Input{Candles: tt.candles, Trendlines: []domain.Trendline{tt.upper, tt.lower}}, DefaultConfig())
			p, ok := findType(got, tt.want)
			require.True(t, ok, "got %+v", got)
			assert.Equal(t, tt.wantStart, p.StartIndex)
			assert.Equal(t, tt.wantEnd, p.EndIndex)

			d := p.Details.(domain.TriangleDetails)
			assert.Equal(t, tt.wantBreak, d.BreakIndex)
			assert.InDelta(t, tt.wantApex, d.ApexIndex, 1e-9)
			assert.Len(t, p.SupportingTrendlines, 2)
		})
	}
}

func TestMatch_TriangleRequiresConvergence(t *testing.T) {
	candles := flat(18, 107, 100)
	upper := domain.Trendline{Kind: domain.Resistance, Slope: 0, Intercept: 110, TouchIndices: []int{2, 14}, Valid: true}
	lower := domain.Trendline{Kind: domain.Support, Slope: -0.5, Intercept: 104, TouchIndices: []int{4, 10}, Valid: true}

	got := Match(Input{Candles: candles, Trendlines: []domain.Trendline{upper, lower}}, DefaultConfig())
	assert.Empty(t, got)
}

func TestMatch_EmptyInputs(t *testing.T) {
	got := Match(Input{}, DefaultConfig())
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Match(Input{Candles: flat(30, 100, 10)}, DefaultConfig()))
}

func TestDedupe(t *testing.T) {
	ps := []domain.Pattern{
		{Type: domain.PatternBreakout, StartIndex: 0, EndIndex: 8, Confidence: 50},
		{Type: domain.PatternBreakout, StartIndex: 2, EndIndex: 9, Confidence: 70},
		{Type: domain.PatternBreakout, StartIndex: 12, EndIndex: 14, Confidence: 40},
		{Type: domain.PatternBreakdown, StartIndex: 1, EndIndex: 8, Confidence: 45},
	}

	got := Dedupe(ps)
	require.Len(t, got, 3)
	assert.Equal(t, 70.0, got[0].Confidence)
	for _, p := range got {
		assert.NotEqual(t, 50.0, p.Confidence)
	}
}

func TestBaseConfidence(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name                    string
		touch, volume, symmetry float64
		want                    float64
	}{
		{"all zero is the floor", 0, 0, 0, 35},
		{"all full", 1, 1, 1, 100},
		{"clamped above", 5, 9, 3, 100},
		{"clamped below", -1, -2, -3, 35},
		{"touch only", 1, 0, 0, 61},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BaseConfidence(cfg, tt.touch, tt.volume, tt.symmetry)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, float64(int(got)))
		})
	}
}
