package domain

import "strings"

// Interval is the candle granularity requested by a caller.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval3d  Interval = "3d"
	Interval1w  Interval = "1w"
	Interval1M  Interval = "1M"
	Interval1y  Interval = "1y"
	IntervalMax Interval = "max" // All available history
)

var knownIntervals = []Interval{
	Interval1m, Interval3m, Interval5m, Interval15m, Interval30m,
	Interval1h, Interval2h, Interval4h, Interval6h, Interval12h,
	Interval1d, Interval3d, Interval1w, Interval1M, Interval1y, IntervalMax,
}

// Intervals lists every supported interval, shortest first.
func Intervals() []Interval {
	out := make([]Interval, len(knownIntervals))
	copy(out, knownIntervals)
	return out
}

// Valid reports whether the interval is one of the supported labels.
func (i Interval) Valid() bool {
	for _, k := range knownIntervals {
		if k == i {
			return true
		}
	}
	return false
}

// ParseInterval normalizes a user supplied label. Month ("1M") is the only
// case-sensitive label; everything else is matched case-insensitively.
func ParseInterval(s string) (Interval, bool) {
	s = strings.TrimSpace(s)
	if s == "1M" {
		return Interval1M, true
	}
	lower := Interval(strings.ToLower(s))
	switch lower {
	case "all":
		return IntervalMax, true
	case "1mo", "1month":
		return Interval1M, true
	}
	if lower.Valid() {
		return lower, true
	}
	return "", false
}
