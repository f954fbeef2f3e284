package strategy

import (
	"math"

	"main/internal/book"
	"main/internal/schema"
)

// DefaultSignalQuantity is the size attached to stat-arb signals.
const DefaultSignalQuantity schema.Quantity = 100

// StatArb trades mean reversion of price ratios between symbol pairs.
// For each tracked symbol it keeps a bounded window of mid prices; on
// every update it compares the current ratio against each other symbol
// to the ratio's recent mean, in standard deviations, and signals when
// the divergence crosses the threshold.
type StatArb struct {
	symbols   []string
	threshold float64
	window    int
	history   map[string][]float64
}

// NewStatArb creates the strategy for a symbol set, a z-score
// threshold and a sample window.
func NewStatArb(symbols []string, threshold float64, window int) *StatArb {
	if window < 2 {
		window = 2
	}
	return &StatArb{
		symbols:   symbols,
		threshold: threshold,
		window:    window,
	}
}

// Name implements Strategy.
func (s *StatArb) Name() string {
	return "StatisticalArbitrage"
}

// Initialize implements Strategy. It resets all price histories.
func (s *StatArb) Initialize() {
	s.history = make(map[string][]float64, len(s.symbols))
	for _, sym := range s.symbols {
		s.history[sym] = make([]float64, 0, s.window)
	}
}

// ProcessUpdate implements Strategy. Updates for symbols outside the
// tracked set and books without a mid price emit nothing.
func (s *StatArb) ProcessUpdate(b *book.Book) []schema.Signal {
	symbol := b.Symbol()
	hist, tracked := s.history[symbol]
	if !tracked {
		return nil
	}

	mid, ok := b.MidPrice()
	if !ok {
		return nil
	}

	hist = append(hist, float64(mid))
	if len(hist) > s.window {
		hist = hist[1:]
	}
	s.history[symbol] = hist
	if len(hist) < s.window {
		return nil
	}

	var signals []schema.Signal
	for _, other := range s.symbols {
		if other == symbol {
			continue
		}
		z := s.pairZScore(symbol, other)
		if math.Abs(z) <= s.threshold {
			continue
		}

		sigType := schema.SignalBuy
		if z > 0 {
			sigType = schema.SignalSell
		}
		signals = append(signals, schema.Signal{
			Type:       sigType,
			Symbol:     symbol,
			Price:      mid,
			Quantity:   DefaultSignalQuantity,
			Confidence: math.Min(math.Abs(z)/(2*s.threshold), 1),
			Timestamp:  schema.Now(),
		})
	}
	return signals
}

// pairZScore measures how far the current price ratio of a/b sits from
// its mean over the aligned tails of both histories, in population
// standard deviations. Degenerate inputs report zero.
func (s *StatArb) pairZScore(a, b string) float64 {
	pricesA := s.history[a]
	pricesB := s.history[b]

	n := min(len(pricesA), len(pricesB))
	if n < 2 {
		return 0
	}

	offA := len(pricesA) - n
	offB := len(pricesB) - n
	ratios := make([]float64, n)
	for i := 0; i < n; i++ {
		ratios[i] = pricesA[offA+i] / pricesB[offB+i]
	}

	var sum float64
	for _, r := range ratios {
		sum += r
	}
	mean := sum / float64(n)

	var sqSum float64
	for _, r := range ratios {
		d := r - mean
		sqSum += d * d
	}
	std := math.Sqrt(sqSum / float64(n))
	if std == 0 {
		return 0
	}

	current := pricesA[len(pricesA)-1] / pricesB[len(pricesB)-1]
	return (current - mean) / std
}
