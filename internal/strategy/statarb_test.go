package strategy

import (
	"testing"

	"main/internal/book"
	"main/internal/schema"
)

// bookWithMid builds a book whose mid price is exactly mid.
func bookWithMid(t *testing.T, symbol string, mid schema.Price) *book.Book {
	t.Helper()
	b := book.New(symbol)
	if !b.AddOrder(book.Order{ID: 1, Price: mid - 10, Quantity: 1, Side: schema.SideBuy, Symbol: symbol}) {
		t.Fatalf("seed bid failed")
	}
	if !b.AddOrder(book.Order{ID: 2, Price: mid + 10, Quantity: 1, Side: schema.SideSell, Symbol: symbol}) {
		t.Fatalf("seed ask failed")
	}
	return b
}

func feed(t *testing.T, s *StatArb, symbol string, mids []schema.Price) []schema.Signal {
	t.Helper()
	var last []schema.Signal
	for _, mid := range mids {
		last = s.ProcessUpdate(bookWithMid(t, symbol, mid))
	}
	return last
}

func TestUntrackedSymbolEmitsNothing(t *testing.T) {
	s := NewStatArb([]string{"AAPL", "MSFT"}, 1.0, 4)
	s.Initialize()
	if got := s.ProcessUpdate(bookWithMid(t, "GOOG", 10000)); got != nil {
		t.Fatalf("untracked symbol emitted %v", got)
	}
}

func TestNoMidPriceEmitsNothing(t *testing.T) {
	s := NewStatArb([]string{"AAPL", "MSFT"}, 1.0, 4)
	s.Initialize()

	b := book.New("AAPL")
	b.AddOrder(book.Order{ID: 1, Price: 10000, Quantity: 1, Side: schema.SideBuy, Symbol: "AAPL"})
	if got := s.ProcessUpdate(b); got != nil {
		t.Fatalf("one-sided book emitted %v", got)
	}
}

func TestWarmupWindowEmitsNothing(t *testing.T) {
	s := NewStatArb([]string{"AAPL", "MSFT"}, 1.0, 4)
	s.Initialize()
	if got := feed(t, s, "AAPL", []schema.Price{10000, 10010, 10020}); got != nil {
		t.Fatalf("signals before window filled: %v", got)
	}
}

func TestIdenticalHistoriesScoreZero(t *testing.T) {
	s := NewStatArb([]string{"AAPL", "MSFT"}, 0.5, 4)
	s.Initialize()

	mids := []schema.Price{10000, 10100, 10200, 10300}
	feed(t, s, "AAPL", mids)
	got := feed(t, s, "MSFT", mids)
	if got != nil {
		t.Fatalf("identical histories emitted %v", got)
	}

	if z := s.pairZScore("AAPL", "MSFT"); z != 0 {
		t.Fatalf("identical histories z-score: got %v want 0", z)
	}
}

func TestConstantRatioScoresZero(t *testing.T) {
	s := NewStatArb([]string{"AAPL", "MSFT"}, 0.5, 4)
	s.Initialize()

	feed(t, s, "AAPL", []schema.Price{20000, 20200, 20400, 20600})
	feed(t, s, "MSFT", []schema.Price{10000, 10100, 10200, 10300})
	if z := s.pairZScore("AAPL", "MSFT"); z != 0 {
		t.Fatalf("constant-ratio z-score: got %v want 0", z)
	}
}

func TestDivergenceTriggersSellSignal(t *testing.T) {
	s := NewStatArb([]string{"AAPL", "MSFT"}, 1.0, 4)
	s.Initialize()

	// AAPL holds steady while MSFT drops on the final tick, pushing
	// the AAPL/MSFT ratio above its window mean.
	feed(t, s, "AAPL", []schema.Price{10000, 10000, 10000})
	feed(t, s, "MSFT", []schema.Price{10000, 10000, 10000, 8000})
	got := feed(t, s, "AAPL", []schema.Price{10000})

	if len(got) != 1 {
		t.Fatalf("signal count: got %d want 1 (%v)", len(got), got)
	}
	sig := got[0]
	if sig.Type != schema.SignalSell {
		t.Fatalf("signal type: got %v want SELL", sig.Type)
	}
	if sig.Symbol != "AAPL" {
		t.Fatalf("signal symbol: got %q want AAPL", sig.Symbol)
	}
	if sig.Price != 10000 {
		t.Fatalf("signal price: got %d want 10000", sig.Price)
	}
	if sig.Quantity != DefaultSignalQuantity {
		t.Fatalf("signal quantity: got %d want %d", sig.Quantity, DefaultSignalQuantity)
	}
	if sig.Confidence <= 0 || sig.Confidence > 1 {
		t.Fatalf("signal confidence out of range: %v", sig.Confidence)
	}
}

func TestEngineLifecycleAndOrdering(t *testing.T) {
	e := NewEngine(nil)
	s := NewStatArb([]string{"AAPL", "MSFT"}, 1.0, 4)
	e.Register(s)

	var emitted []schema.Signal
	e.SetSignalCallback(func(sig schema.Signal) {
		emitted = append(emitted, sig)
	})

	// Before Start nothing runs, including history accumulation.
	e.ProcessOrderBook(bookWithMid(t, "AAPL", 10000))
	if e.Running() {
		t.Fatalf("engine running before Start")
	}

	e.Start()
	for _, mid := range []schema.Price{10000, 10000, 10000} {
		e.ProcessOrderBook(bookWithMid(t, "AAPL", mid))
	}
	for _, mid := range []schema.Price{10000, 10000, 10000, 8000} {
		e.ProcessOrderBook(bookWithMid(t, "MSFT", mid))
	}
	e.ProcessOrderBook(bookWithMid(t, "AAPL", 10000))
	if len(emitted) == 0 {
		t.Fatalf("no signals delivered through the callback")
	}

	e.Stop()
	n := len(emitted)
	e.ProcessOrderBook(bookWithMid(t, "AAPL", 8000))
	if len(emitted) != n {
		t.Fatalf("signals delivered after Stop")
	}
}
