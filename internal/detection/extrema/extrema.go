// Package extrema finds fractal pivot highs and lows in a candle sequence.
package extrema

import "patternScout/internal/domain"

// Extract returns the pivots of one kind using a symmetric window of radius k.
//
// Candle i (k <= i < n-k) is a pivot high when its high is strictly greater than every
// other high in [i-k, i+k]; pivot lows are symmetric on lows. Sequences shorter than
// 2k+1, or k < 1, yield an empty slice. Output is ordered by index.
func Extract(candles []domain.Candle, k int, kind domain.PivotKind) []domain.Pivot {
	n := len(candles)
	if k < 1 || n < 2*k+1 {
		return []domain.Pivot{}
	}

	pivots := make([]domain.Pivot, 0, n/(k+1))
	for i := k; i < n-k; i++ {
		p := priceOf(candles[i], kind)
		isPivot := true
		for j := i - k; j <= i+k && isPivot; j++ {
			if j == i {
				continue
			}
			q := priceOf(candles[j], kind)
			if kind == domain.PivotHigh {
				isPivot = p > q
			} else {
				isPivot = p < q
			}
		}
		if isPivot {
			pivots = append(pivots, domain.Pivot{Index: i, Price: p, Kind: kind})
		}
	}
	return pivots
}

// ExtractAll returns highs and lows merged by index; on a shared index the high comes first.
func ExtractAll(candles []domain.Candle, k int) []domain.Pivot {
	highs := Extract(candles, k, domain.PivotHigh)
	lows := Extract(candles, k, domain.PivotLow)

	out := make([]domain.Pivot, 0, len(highs)+len(lows))
	i, j := 0, 0
	for i < len(highs) && j < len(lows) {
		if highs[i].Index <= lows[j].Index {
			out = append(out, highs[i])
			i++
		} else {
			out = append(out, lows[j])
			j++
		}
	}
	out = append(out, highs[i:]...)
	return append(out, lows[j:]...)
}

// OfKind filters pivots to a single kind, preserving order.
func OfKind(pivots []domain.Pivot, kind domain.PivotKind) []domain.Pivot {
	out := make([]domain.Pivot, 0, len(pivots))
	for _, p := range pivots {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

func priceOf(c domain.Candle, kind domain.PivotKind) float64 {
	if kind == domain.PivotHigh {
		return c.High
	}
	return c.Low
}
