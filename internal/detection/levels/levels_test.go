package levels

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patternScout/internal/domain"
)

func lows(prices ...float64) []domain.Pivot {
	out := make([]domain.Pivot, len(prices))
	for i, p := range prices {
		out[i] = domain.Pivot{Index: 3 * (i + 1), Price: p, Kind: domain.PivotLow}
	}
	return out
}

func TestDetect_SupportCluster(t *testing.T) {
	pivots := lows(95, 95.1, 94.9, 98, 95.2)
	cfg := Config{TolerancePct: 2, MinTouches: 1, RecencyFloor: 0.5}

	got := Detect(pivots, cfg, 20)
	support, resistance := Split(got)

	require.NotEmpty(t, support)
	assert.Empty(t, resistance)
	top := support[0]
	assert.InDelta(t, 95.0, top.Price, 0.5)
	assert.GreaterOrEqual(t, top.TouchCount, 3)
	assert.Equal(t, domain.Support, top.Kind)
	assert.Equal(t, 3, top.FirstTouchIndex)
	assert.Equal(t, 15, top.LastTouchIndex)
}

func TestDetect_MinTouchesAndTopN(t *testing.T) {
	pivots := lows(95, 95.1, 94.9, 98, 95.2, 110)

	got := Detect(pivots, Config{TolerancePct: 1, MinTouches: 2, RecencyFloor: 0.5}, 30)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].TouchCount)

	got = Detect(pivots, Config{TolerancePct: 1, TopN: 2, MinTouches: 1, RecencyFloor: 0.5}, 30)
	assert.Len(t, got, 2)
}

func TestDetect_RecencyBreaksEqualTouches(t *testing.T) {
	pivots := []domain.Pivot{
		{Index: 2, Price: 50, Kind: domain.PivotHigh},
		{Index: 40, Price: 80, Kind: domain.PivotHigh},
	}
	got := Detect(pivots, Config{TolerancePct: 1, MinTouches: 1, RecencyFloor: 0.5}, 50)

	require.Len(t, got, 2)
	assert.Equal(t, 80.0, got[0].Price)
	assert.Greater(t, got[0].Strength, got[1].Strength)
	assert.Equal(t, domain.Resistance, got[0].Kind)
}

func TestDetect_LevelsWithinObservedRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	pivots := make([]domain.Pivot, 0, 60)
	minP, maxP := 1e9, -1e9
	for i := 0; i < 60; i++ {
		p := 100 + r.Float64()*20
		kind := domain.PivotLow
		if i%2 == 0 {
			kind = domain.PivotHigh
		}
		pivots = append(pivots, domain.Pivot{Index: i, Price: p, Kind: kind})
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}

	for _, lvl := range Detect(pivots, Config{TolerancePct: 3, MinTouches: 1, RecencyFloor: 0.3}, 60) {
		assert.GreaterOrEqual(t, lvl.Price, minP)
		assert.LessOrEqual(t, lvl.Price, maxP)
		assert.LessOrEqual(t, lvl.FirstTouchIndex, lvl.LastTouchIndex)
	}
}

func TestCluster_MembersWithinTolerance(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	pivots := make([]domain.Pivot, 40)
	for i := range pivots {
		pivots[i] = domain.Pivot{Index: i, Price: 50 + r.Float64()*10, Kind: domain.PivotLow}
	}
	for _, g := range cluster(pivots, 2) {
		c := centroid(g)
		for _, m := range g {
			assert.LessOrEqual(t, abs(m.Price-c)/c*100, 2.0+1e-9)
		}
	}
}

func TestCluster_TouchCountMonotonicInTolerance(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewSource(seed))
		pivots := make([]domain.Pivot, 25)
		for i := range pivots {
			pivots[i] = domain.Pivot{Index: i * 2, Price: 90 + r.Float64()*20, Kind: domain.PivotHigh}
		}

		prev := make(map[int]int)
		for _, tol := range []float64{0.1, 0.25, 0.5, 1, 1.5, 2, 3, 5, 8, 12} {
			counts := make(map[int]int)
			for _, g := range cluster(pivots, tol) {
				for _, m := range g {
					counts[m.Index] = len(g)
				}
			}
			require.Len(t, counts, len(pivots))
			for idx, n := range counts {
				assert.GreaterOrEqual(t, n, prev[idx], "seed %d tol %.2f pivot %d", seed, tol, idx)
			}
			prev = counts
		}
	}
}

func TestCluster_GreedyCounterexample(t *testing.T) {
	// A left-to-right centroid sweep splits these differently at neighbouring tolerances.
	pivots := lows(100, 101.5, 102.9)
	narrow := cluster(pivots, 1.0)
	wide := cluster(pivots, 1.5)
	assert.GreaterOrEqual(t, len(narrow), len(wide))
}

func TestDetect_Empty(t *testing.T) {
	got := Detect(nil, DefaultConfig(), 0)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecencyWeight(t *testing.T) {
	assert.InDelta(t, 1.0, RecencyWeight(9, 10, 0.5), 1e-9)
	assert.InDelta(t, 0.55, RecencyWeight(0, 10, 0.5), 1e-9)
	assert.Less(t, RecencyWeight(3, 10, 0.5), RecencyWeight(4, 10, 0.5))
	assert.Equal(t, 1.0, RecencyWeight(3, 0, 0.5))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
