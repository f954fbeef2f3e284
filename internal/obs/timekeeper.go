package obs

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// DefaultMaxSamples bounds a Timekeeper's sample vector.
const DefaultMaxSamples = 1 << 20

// Timekeeper brackets code sections with Start/End and keeps the
// elapsed nanoseconds of every bracket up to a fixed cap, after which
// new samples are dropped silently. Statistics are computed on demand.
// A Timekeeper belongs to one goroutine; it is not safe for concurrent
// use.
type Timekeeper struct {
	name       string
	maxSamples int
	samples    []uint64
	started    time.Time
}

// NewTimekeeper creates a sampler with the given cap. A cap of zero or
// less falls back to DefaultMaxSamples.
func NewTimekeeper(name string, maxSamples int) *Timekeeper {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Timekeeper{
		name:       name,
		maxSamples: maxSamples,
		samples:    make([]uint64, 0, min(maxSamples, 4096)),
	}
}

// Start marks the beginning of a bracket.
func (t *Timekeeper) Start() {
	t.started = time.Now()
}

// End closes the bracket opened by the last Start, records the sample
// and returns it.
func (t *Timekeeper) End() time.Duration {
	d := time.Since(t.started)
	t.Record(d)
	return d
}

// Record adds an externally measured sample.
func (t *Timekeeper) Record(d time.Duration) {
	if d < 0 {
		return
	}
	if len(t.samples) < t.maxSamples {
		t.samples = append(t.samples, uint64(d))
	}
}

// Count returns the number of retained samples.
func (t *Timekeeper) Count() int {
	return len(t.samples)
}

// Clear drops all samples.
func (t *Timekeeper) Clear() {
	t.samples = t.samples[:0]
}

// Min returns the smallest sample, or zero when empty.
func (t *Timekeeper) Min() time.Duration {
	if len(t.samples) == 0 {
		return 0
	}
	return time.Duration(slices.Min(t.samples))
}

// Max returns the largest sample, or zero when empty.
func (t *Timekeeper) Max() time.Duration {
	if len(t.samples) == 0 {
		return 0
	}
	return time.Duration(slices.Max(t.samples))
}

// Mean returns the arithmetic mean, or zero when empty.
func (t *Timekeeper) Mean() time.Duration {
	if len(t.samples) == 0 {
		return 0
	}
	var sum uint64
	for _, s := range t.samples {
		sum += s
	}
	return time.Duration(sum / uint64(len(t.samples)))
}

// Median returns the middle sample, averaging the two middles for an
// even count. Zero when empty.
func (t *Timekeeper) Median() time.Duration {
	n := len(t.samples)
	if n == 0 {
		return 0
	}
	sorted := t.sortedCopy()
	if n%2 == 0 {
		return time.Duration((sorted[n/2-1] + sorted[n/2]) / 2)
	}
	return time.Duration(sorted[n/2])
}

// Percentile returns the sample at rank ceil(p*n)-1 of the sorted
// vector, clamped to the valid range. p is a fraction in [0, 1].
func (t *Timekeeper) Percentile(p float64) time.Duration {
	n := len(t.samples)
	if n == 0 {
		return 0
	}
	rank := int(math.Ceil(float64(n)*p)) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	sorted := t.sortedCopy()
	return time.Duration(sorted[rank])
}

// HistogramBin is one bucket of a uniform histogram.
type HistogramBin struct {
	Low   time.Duration
	High  time.Duration
	Count int
}

// Histogram splits [min, max] into the given number of uniform bins
// and counts samples per bin. Nil when there are no samples or bins.
func (t *Timekeeper) Histogram(bins int) []HistogramBin {
	n := len(t.samples)
	if n == 0 || bins <= 0 {
		return nil
	}

	lo := uint64(t.Min())
	hi := uint64(t.Max())
	if lo == hi {
		return []HistogramBin{{Low: time.Duration(lo), High: time.Duration(hi), Count: n}}
	}

	out := make([]HistogramBin, bins)
	width := (hi - lo) / uint64(bins)
	if width == 0 {
		width = 1
	}
	for i := range out {
		out[i].Low = time.Duration(lo + uint64(i)*width)
		out[i].High = time.Duration(lo + uint64(i+1)*width)
	}
	out[bins-1].High = time.Duration(hi)

	for _, s := range t.samples {
		idx := int((s - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// Summary formats the headline statistics on one line.
func (t *Timekeeper) Summary() string {
	if len(t.samples) == 0 {
		return fmt.Sprintf("%s: no samples", t.name)
	}
	return fmt.Sprintf("%s: n=%d min=%v p50=%v p99=%v max=%v mean=%v",
		t.name, t.Count(), t.Min(), t.Median(), t.Percentile(0.99), t.Max(), t.Mean())
}

func (t *Timekeeper) sortedCopy() []uint64 {
	sorted := make([]uint64, len(t.samples))
	copy(sorted, t.samples)
	slices.Sort(sorted)
	return sorted
}
