// Package book maintains one price-ordered limit order book per symbol.
//
// A Book is single-writer: the ingest goroutine applies all mutations.
// The cached best bid and ask are published through atomics so that the
// execution worker can read tops concurrently without tearing.
package book

import (
	"math"
	"sync/atomic"

	"github.com/tidwall/btree"

	"main/internal/schema"
)

// absentPrice marks an empty side in the best-price caches.
const absentPrice = math.MinInt64

const btreeDegree = 32

// Order is a resting book entry.
type Order struct {
	ID               schema.OrderID
	Price            schema.Price
	Quantity         schema.Quantity
	OriginalQuantity schema.Quantity
	Side             schema.Side
	Timestamp        schema.Timestamp
	Symbol           string
}

// Level aggregates resting quantity at one price.
type Level struct {
	Price    schema.Price
	Quantity uint64
}

// Book holds the bid and ask sides of one symbol plus an order index.
// Levels live in ordered maps keyed by price, so a level exists exactly
// while its aggregate quantity is non-zero and best prices come from
// the map extremes instead of a table scan.
type Book struct {
	symbol string

	bids   *btree.Map[int64, *Level]
	asks   *btree.Map[int64, *Level]
	orders map[schema.OrderID]*Order

	bestBid atomic.Int64
	bestAsk atomic.Int64
}

// New creates an empty book for a symbol.
func New(symbol string) *Book {
	b := &Book{
		symbol: symbol,
		bids:   btree.NewMap[int64, *Level](btreeDegree),
		asks:   btree.NewMap[int64, *Level](btreeDegree),
		orders: make(map[schema.OrderID]*Order),
	}
	b.bestBid.Store(absentPrice)
	b.bestAsk.Store(absentPrice)
	return b
}

// Symbol returns the symbol this book tracks.
func (b *Book) Symbol() string {
	return b.symbol
}

// AddOrder rests a new order on the book. Duplicate ids and unknown
// sides are rejected with no mutation.
func (b *Book) AddOrder(o Order) bool {
	if o.Side != schema.SideBuy && o.Side != schema.SideSell {
		return false
	}
	if _, exists := b.orders[o.ID]; exists {
		return false
	}
	if o.OriginalQuantity == 0 {
		o.OriginalQuantity = o.Quantity
	}
	stored := o
	b.orders[o.ID] = &stored
	b.addToLevel(o.Side, o.Price, uint64(o.Quantity))
	b.refreshBest(o.Side)
	return true
}

// ModifyOrder replaces the remaining quantity of a resting order. A new
// quantity of zero removes the order. Unknown ids return false.
func (b *Book) ModifyOrder(id schema.OrderID, newQuantity schema.Quantity) bool {
	o, ok := b.orders[id]
	if !ok {
		return false
	}
	b.removeFromLevel(o.Side, o.Price, uint64(o.Quantity))
	if newQuantity == 0 {
		delete(b.orders, id)
	} else {
		b.addToLevel(o.Side, o.Price, uint64(newQuantity))
		o.Quantity = newQuantity
		if newQuantity > o.OriginalQuantity {
			o.OriginalQuantity = newQuantity
		}
	}
	b.refreshBest(o.Side)
	return true
}

// CancelOrder removes a resting order. Unknown ids return false.
func (b *Book) CancelOrder(id schema.OrderID) bool {
	o, ok := b.orders[id]
	if !ok {
		return false
	}
	b.removeFromLevel(o.Side, o.Price, uint64(o.Quantity))
	delete(b.orders, id)
	b.refreshBest(o.Side)
	return true
}

// ExecuteOrder reduces a resting order by an executed quantity and
// removes it when nothing is left. Executions exceeding the remaining
// quantity are rejected with no mutation.
func (b *Book) ExecuteOrder(id schema.OrderID, execQuantity schema.Quantity) bool {
	o, ok := b.orders[id]
	if !ok {
		return false
	}
	if execQuantity > o.Quantity {
		return false
	}
	b.removeFromLevel(o.Side, o.Price, uint64(execQuantity))
	o.Quantity -= execQuantity
	if o.Quantity == 0 {
		delete(b.orders, id)
	}
	b.refreshBest(o.Side)
	return true
}

// Order returns a copy of a resting order.
func (b *Book) Order(id schema.OrderID) (Order, bool) {
	o, ok := b.orders[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// OrderCount returns the number of resting orders.
func (b *Book) OrderCount() int {
	return len(b.orders)
}

// BestBid returns the highest bid price with resting quantity. Safe to
// call from any goroutine.
func (b *Book) BestBid() (schema.Price, bool) {
	v := b.bestBid.Load()
	if v == absentPrice {
		return 0, false
	}
	return schema.Price(v), true
}

// BestAsk returns the lowest ask price with resting quantity. Safe to
// call from any goroutine.
func (b *Book) BestAsk() (schema.Price, bool) {
	v := b.bestAsk.Load()
	if v == absentPrice {
		return 0, false
	}
	return schema.Price(v), true
}

// Spread returns best ask minus best bid when both sides are present.
func (b *Book) Spread() (schema.Price, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

// MidPrice returns the integer average of the best bid and ask when
// both sides are present. The division truncates toward zero.
func (b *Book) MidPrice() (schema.Price, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Depth returns the number of non-empty levels per side.
func (b *Book) Depth() (bids int, asks int) {
	return b.bids.Len(), b.asks.Len()
}

// Levels snapshots up to n levels of one side, best first: bids in
// descending price order, asks ascending.
func (b *Book) Levels(side schema.Side, n int) []Level {
	if n <= 0 {
		return nil
	}
	out := make([]Level, 0, n)
	collect := func(_ int64, level *Level) bool {
		out = append(out, *level)
		return len(out) < n
	}
	if side == schema.SideBuy {
		b.bids.Reverse(collect)
	} else {
		b.asks.Scan(collect)
	}
	return out
}

func (b *Book) sideMap(side schema.Side) *btree.Map[int64, *Level] {
	if side == schema.SideBuy {
		return b.bids
	}
	return b.asks
}

func (b *Book) addToLevel(side schema.Side, price schema.Price, qty uint64) {
	if qty == 0 {
		return
	}
	m := b.sideMap(side)
	if level, ok := m.Get(int64(price)); ok {
		level.Quantity += qty
		return
	}
	m.Set(int64(price), &Level{Price: price, Quantity: qty})
}

func (b *Book) removeFromLevel(side schema.Side, price schema.Price, qty uint64) {
	m := b.sideMap(side)
	level, ok := m.Get(int64(price))
	if !ok {
		return
	}
	if qty >= level.Quantity {
		m.Delete(int64(price))
		return
	}
	level.Quantity -= qty
}

func (b *Book) refreshBest(side schema.Side) {
	if side == schema.SideBuy {
		if price, _, ok := b.bids.Max(); ok {
			b.bestBid.Store(price)
		} else {
			b.bestBid.Store(absentPrice)
		}
		return
	}
	if price, _, ok := b.asks.Min(); ok {
		b.bestAsk.Store(price)
	} else {
		b.bestAsk.Store(absentPrice)
	}
}
