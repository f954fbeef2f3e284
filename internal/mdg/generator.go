// Package mdg generates a synthetic packed-binary market data feed.
// Prices follow a bounded random walk per symbol; order ids stay
// consistent, so modifies, cancels and executions always reference an
// order the generator previously added.
package mdg

import (
	"math/rand/v2"

	"main/internal/codec"
	"main/internal/schema"
)

// Config controls the generator.
type Config struct {
	Symbols []string
	// BasePrice seeds each symbol's walk. Zero means 10000.
	BasePrice schema.Price
	// MaxStep bounds one walk step in price units. Zero means 25.
	MaxStep int64
	// Seed fixes the random stream; two generators with the same seed
	// and config emit identical feeds.
	Seed uint64
}

type liveOrder struct {
	id       schema.OrderID
	price    schema.Price
	quantity schema.Quantity
	side     schema.Side
}

type symbolState struct {
	name  string
	price schema.Price
	live  []liveOrder
}

// Generator emits wire-encoded message batches.
type Generator struct {
	rng     *rand.Rand
	symbols []*symbolState
	maxStep int64
	nextID  schema.OrderID
	now     schema.Timestamp
}

// NewGenerator creates a generator over the given symbols.
func NewGenerator(cfg Config) *Generator {
	base := cfg.BasePrice
	if base == 0 {
		base = 10000
	}
	step := cfg.MaxStep
	if step <= 0 {
		step = 25
	}

	g := &Generator{
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9E3779B97F4A7C15)),
		maxStep: step,
		nextID:  1,
		now:     1,
	}
	for _, name := range cfg.Symbols {
		g.symbols = append(g.symbols, &symbolState{name: name, price: base})
	}
	return g
}

// NextBatch appends n wire messages to dst and returns it. The batch
// mixes adds, modifies, cancels, executions, trades and heartbeats;
// timestamps increase monotonically.
func (g *Generator) NextBatch(dst []byte, n int) []byte {
	if len(g.symbols) == 0 {
		return dst
	}
	for i := 0; i < n; i++ {
		dst = g.appendMessage(dst)
	}
	return dst
}

// LiveOrders reports how many resting orders the generator tracks for
// a symbol.
func (g *Generator) LiveOrders(symbol string) int {
	for _, s := range g.symbols {
		if s.name == symbol {
			return len(s.live)
		}
	}
	return 0
}

func (g *Generator) appendMessage(dst []byte) []byte {
	s := g.symbols[g.rng.IntN(len(g.symbols))]
	g.now++

	// Weighted mix: adds dominate so books keep depth.
	roll := g.rng.IntN(100)
	switch {
	case roll < 45 || len(s.live) == 0:
		return g.appendAdd(dst, s)
	case roll < 60:
		return g.appendModify(dst, s)
	case roll < 72:
		return g.appendCancel(dst, s)
	case roll < 85:
		return g.appendExecute(dst, s)
	case roll < 95:
		return g.appendTrade(dst, s)
	default:
		return codec.AppendHeartbeat(dst, g.now, s.name)
	}
}

func (g *Generator) appendAdd(dst []byte, s *symbolState) []byte {
	g.walk(s)
	side := schema.SideBuy
	offset := -schema.Price(1 + g.rng.Int64N(50))
	if g.rng.IntN(2) == 1 {
		side = schema.SideSell
		offset = -offset
	}
	price := s.price + offset
	if price < 1 {
		price = 1
	}
	order := liveOrder{
		id:       g.nextID,
		price:    price,
		quantity: schema.Quantity(10 + g.rng.Uint32N(490)),
		side:     side,
	}
	g.nextID++
	s.live = append(s.live, order)
	return codec.AppendAddOrder(dst, g.now, s.name, schema.AddOrder{
		OrderID:  order.id,
		Price:    order.price,
		Quantity: order.quantity,
		Side:     order.side,
	})
}

func (g *Generator) appendModify(dst []byte, s *symbolState) []byte {
	o := &s.live[g.rng.IntN(len(s.live))]
	o.quantity = schema.Quantity(1 + g.rng.Uint32N(500))
	return codec.AppendModifyOrder(dst, g.now, s.name, schema.ModifyOrder{
		OrderID:     o.id,
		NewQuantity: o.quantity,
	})
}

func (g *Generator) appendCancel(dst []byte, s *symbolState) []byte {
	idx := g.rng.IntN(len(s.live))
	id := s.live[idx].id
	s.live[idx] = s.live[len(s.live)-1]
	s.live = s.live[:len(s.live)-1]
	return codec.AppendCancelOrder(dst, g.now, s.name, schema.CancelOrder{OrderID: id})
}

func (g *Generator) appendExecute(dst []byte, s *symbolState) []byte {
	idx := g.rng.IntN(len(s.live))
	o := &s.live[idx]
	exec := schema.Quantity(1 + g.rng.Uint32N(uint32(o.quantity)))
	msg := schema.ExecuteOrder{OrderID: o.id, ExecQuantity: exec, ExecPrice: o.price}
	if exec >= o.quantity {
		s.live[idx] = s.live[len(s.live)-1]
		s.live = s.live[:len(s.live)-1]
	} else {
		o.quantity -= exec
	}
	return codec.AppendExecuteOrder(dst, g.now, s.name, msg)
}

func (g *Generator) appendTrade(dst []byte, s *symbolState) []byte {
	g.walk(s)
	side := schema.SideBuy
	if g.rng.IntN(2) == 1 {
		side = schema.SideSell
	}
	return codec.AppendTrade(dst, g.now, s.name, schema.Trade{
		Price:         s.price,
		Quantity:      schema.Quantity(1 + g.rng.Uint32N(200)),
		AggressorSide: side,
	})
}

// walk moves the symbol price one bounded step, floored at one tick.
func (g *Generator) walk(s *symbolState) {
	step := schema.Price(g.rng.Int64N(2*g.maxStep+1) - g.maxStep)
	s.price += step
	if s.price < 1 {
		s.price = 1
	}
}
