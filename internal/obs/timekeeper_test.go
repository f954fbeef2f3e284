package obs

import (
	"testing"
	"time"

	"main/internal/schema"
)

func feed(t *Timekeeper, samples ...time.Duration) {
	for _, s := range samples {
		t.Record(s)
	}
}

func TestTimekeeperStats(t *testing.T) {
	tk := NewTimekeeper("batch", 0)
	feed(tk, 40, 10, 30, 20, 50)

	if tk.Count() != 5 {
		t.Fatalf("count: got %d want 5", tk.Count())
	}
	if tk.Min() != 10 || tk.Max() != 50 {
		t.Fatalf("extremes: min=%v max=%v", tk.Min(), tk.Max())
	}
	if tk.Mean() != 30 {
		t.Fatalf("mean: got %v want 30", tk.Mean())
	}
	if tk.Median() != 30 {
		t.Fatalf("odd median: got %v want 30", tk.Median())
	}

	tk.Record(60)
	if tk.Median() != 35 {
		t.Fatalf("even median: got %v want 35", tk.Median())
	}

	tk.Clear()
	if tk.Count() != 0 || tk.Min() != 0 || tk.Mean() != 0 || tk.Median() != 0 {
		t.Fatalf("stats after Clear not zero")
	}
}

// Percentile picks the sample at rank ceil(p*n)-1 of the sorted
// vector.
func TestPercentileRank(t *testing.T) {
	tk := NewTimekeeper("batch", 0)
	for i := 1; i <= 100; i++ {
		tk.Record(time.Duration(i))
	}

	cases := []struct {
		p    float64
		want time.Duration
	}{
		{0, 1},
		{0.01, 1},
		{0.5, 50},
		{0.90, 90},
		{0.99, 99},
		{0.999, 100},
		{1, 100},
	}
	for _, c := range cases {
		if got := tk.Percentile(c.p); got != c.want {
			t.Fatalf("p%.3f: got %v want %v", c.p, got, c.want)
		}
	}
}

func TestSampleCapDropsOverflow(t *testing.T) {
	tk := NewTimekeeper("batch", 8)
	for i := 0; i < 20; i++ {
		tk.Record(time.Duration(i + 1))
	}
	if tk.Count() != 8 {
		t.Fatalf("capped count: got %d want 8", tk.Count())
	}
	// The first eight samples are retained, the rest dropped.
	if tk.Max() != 8 {
		t.Fatalf("max after cap: got %v want 8", tk.Max())
	}
}

func TestNegativeSamplesIgnored(t *testing.T) {
	tk := NewTimekeeper("batch", 0)
	tk.Record(-time.Second)
	if tk.Count() != 0 {
		t.Fatalf("negative sample recorded")
	}
}

func TestHistogram(t *testing.T) {
	tk := NewTimekeeper("batch", 0)
	feed(tk, 0, 10, 20, 30, 40, 50, 60, 70, 80, 100)

	bins := tk.Histogram(5)
	if len(bins) != 5 {
		t.Fatalf("bin count: got %d want 5", len(bins))
	}
	total := 0
	for i, b := range bins {
		total += b.Count
		if b.High <= b.Low {
			t.Fatalf("bin %d degenerate: %+v", i, b)
		}
	}
	if total != tk.Count() {
		t.Fatalf("histogram loses samples: %d of %d", total, tk.Count())
	}
	if bins[0].Low != 0 || bins[len(bins)-1].High != 100 {
		t.Fatalf("histogram range: [%v, %v]", bins[0].Low, bins[len(bins)-1].High)
	}

	// All-equal samples collapse to one bin.
	flat := NewTimekeeper("flat", 0)
	feed(flat, 7, 7, 7)
	if got := flat.Histogram(4); len(got) != 1 || got[0].Count != 3 {
		t.Fatalf("flat histogram: %+v", got)
	}
}

func TestStartEndBrackets(t *testing.T) {
	tk := NewTimekeeper("bracket", 0)
	tk.Start()
	d := tk.End()
	if d < 0 || tk.Count() != 1 {
		t.Fatalf("bracket sample: d=%v count=%d", d, tk.Count())
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveMessage(schema.MessageAddOrder)
	m.AddBytesConsumed(10)
	m.IncSignal()
	m.ObserveIngest(time.Millisecond)
	if snap := m.Snapshot(); snap.SignalsEmitted != 0 {
		t.Fatalf("nil metrics snapshot not zero: %+v", snap)
	}
}

func TestLatencyStatsAggregation(t *testing.T) {
	m := NewMetrics()
	m.ObserveIngest(10 * time.Microsecond)
	m.ObserveIngest(30 * time.Microsecond)
	m.ObserveIngest(20 * time.Microsecond)

	snap := m.Snapshot().IngestLatency
	if snap.Count != 3 || snap.Min != 10*time.Microsecond || snap.Max != 30*time.Microsecond || snap.Avg != 20*time.Microsecond {
		t.Fatalf("latency snapshot: %+v", snap)
	}
}
