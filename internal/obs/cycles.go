package obs

import (
	"sync"
	"time"
)

// The cycle source is the monotonic clock read as nanoseconds since
// process start. Values never decrease; differences stay meaningful
// across calls on any goroutine.
var cycleEpoch = time.Now()

// Cycles returns the current cycle reading.
func Cycles() uint64 {
	return uint64(time.Since(cycleEpoch))
}

// CycleCounter brackets a code section in cycle units.
type CycleCounter struct {
	start uint64
}

// Start marks the beginning of a bracket.
func (c *CycleCounter) Start() {
	c.start = Cycles()
}

// End returns the cycles elapsed since the last Start.
func (c *CycleCounter) End() uint64 {
	return Cycles() - c.start
}

var (
	freqOnce sync.Once
	freqHz   float64
)

// Frequency returns the cycle rate in Hz, measured once over a short
// wall-clock window on first use. The nanosecond-backed source makes
// the result converge on 1e9.
func Frequency() float64 {
	freqOnce.Do(func() {
		startCycles := Cycles()
		startWall := time.Now()
		time.Sleep(50 * time.Millisecond)
		elapsed := time.Since(startWall).Seconds()
		if elapsed <= 0 {
			freqHz = 1e9
			return
		}
		freqHz = float64(Cycles()-startCycles) / elapsed
	})
	return freqHz
}

// CyclesToDuration converts a cycle delta to wall time using the
// measured frequency.
func CyclesToDuration(cycles uint64) time.Duration {
	f := Frequency()
	if f <= 0 {
		return 0
	}
	return time.Duration(float64(cycles) * 1e9 / f)
}
