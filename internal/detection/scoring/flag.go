package scoring

import "sync/atomic"

// atomicFlag is a one-shot latch.
type atomicFlag struct{ v atomic.Bool }

// set reports true only for the first caller.
func (f *atomicFlag) set() bool {
	return f.v.CompareAndSwap(false, true)
}
