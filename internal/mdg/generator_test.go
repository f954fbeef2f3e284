package mdg

import (
	"bytes"
	"testing"

	"main/internal/codec"
	"main/internal/schema"
)

func parseAll(t *testing.T, data []byte) []schema.Message {
	t.Helper()
	var p codec.Parser
	p.Reset(data)
	var msgs []schema.Message
	var m schema.Message
	for p.Next(&m) {
		msg := m
		msg.Symbol = append([]byte(nil), m.Symbol...)
		msgs = append(msgs, msg)
	}
	if p.Offset() != len(data) {
		t.Fatalf("batch has trailing garbage: consumed %d of %d bytes", p.Offset(), len(data))
	}
	return msgs
}

func TestBatchParsesCompletely(t *testing.T) {
	g := NewGenerator(Config{Symbols: []string{"AAPL", "MSFT"}, Seed: 7})
	batch := g.NextBatch(nil, 500)
	msgs := parseAll(t, batch)
	if len(msgs) != 500 {
		t.Fatalf("message count: got %d want 500", len(msgs))
	}

	var prev schema.Timestamp
	for i, m := range msgs {
		if m.Timestamp <= prev {
			t.Fatalf("timestamp not increasing at %d: %d after %d", i, m.Timestamp, prev)
		}
		prev = m.Timestamp
		sym := string(m.Symbol)
		if sym != "AAPL" && sym != "MSFT" {
			t.Fatalf("unexpected symbol %q", sym)
		}
	}
}

// Every modify, cancel and execution must reference an order a prior
// add introduced and that is still live.
func TestReferentialIntegrity(t *testing.T) {
	g := NewGenerator(Config{Symbols: []string{"AAPL"}, Seed: 42})
	msgs := parseAll(t, g.NextBatch(nil, 2000))

	live := make(map[schema.OrderID]schema.Quantity)
	for i, m := range msgs {
		switch m.Type {
		case schema.MessageAddOrder:
			if _, ok := live[m.Add.OrderID]; ok {
				t.Fatalf("msg %d reuses live order id %d", i, m.Add.OrderID)
			}
			if m.Add.Quantity == 0 || m.Add.Price <= 0 {
				t.Fatalf("msg %d degenerate add: %+v", i, m.Add)
			}
			live[m.Add.OrderID] = m.Add.Quantity
		case schema.MessageModifyOrder:
			if _, ok := live[m.Modify.OrderID]; !ok {
				t.Fatalf("msg %d modifies unknown order %d", i, m.Modify.OrderID)
			}
			live[m.Modify.OrderID] = m.Modify.NewQuantity
		case schema.MessageCancelOrder:
			if _, ok := live[m.Cancel.OrderID]; !ok {
				t.Fatalf("msg %d cancels unknown order %d", i, m.Cancel.OrderID)
			}
			delete(live, m.Cancel.OrderID)
		case schema.MessageExecuteOrder:
			remaining, ok := live[m.Execute.OrderID]
			if !ok {
				t.Fatalf("msg %d executes unknown order %d", i, m.Execute.OrderID)
			}
			if m.Execute.ExecQuantity == 0 || m.Execute.ExecQuantity > remaining {
				t.Fatalf("msg %d overfills order %d: exec=%d remaining=%d",
					i, m.Execute.OrderID, m.Execute.ExecQuantity, remaining)
			}
			if m.Execute.ExecQuantity == remaining {
				delete(live, m.Execute.OrderID)
			} else {
				live[m.Execute.OrderID] = remaining - m.Execute.ExecQuantity
			}
		}
	}
	if got := g.LiveOrders("AAPL"); got != len(live) {
		t.Fatalf("generator live count %d, replay says %d", got, len(live))
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	cfg := Config{Symbols: []string{"AAPL", "MSFT", "GOOG"}, Seed: 99}
	a := NewGenerator(cfg).NextBatch(nil, 300)
	b := NewGenerator(cfg).NextBatch(nil, 300)
	if !bytes.Equal(a, b) {
		t.Fatalf("same seed produced different feeds")
	}

	c := NewGenerator(Config{Symbols: cfg.Symbols, Seed: 100}).NextBatch(nil, 300)
	if bytes.Equal(a, c) {
		t.Fatalf("different seeds produced identical feeds")
	}
}

func TestPricesStayPositive(t *testing.T) {
	// A tiny base price with large steps hammers the floor.
	g := NewGenerator(Config{Symbols: []string{"PENNY"}, BasePrice: 2, MaxStep: 500, Seed: 1})
	for _, m := range parseAll(t, g.NextBatch(nil, 1000)) {
		if m.Type == schema.MessageTrade && m.Trade.Price < 1 {
			t.Fatalf("trade price below one tick: %d", m.Trade.Price)
		}
	}
}

func TestEmptySymbolListProducesNothing(t *testing.T) {
	g := NewGenerator(Config{})
	if out := g.NextBatch(nil, 10); len(out) != 0 {
		t.Fatalf("generator without symbols emitted %d bytes", len(out))
	}
}
