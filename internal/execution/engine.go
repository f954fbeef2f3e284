// Package execution simulates the order path: signals become internal
// orders, a single worker matches them against current book tops, and
// every lifecycle step is reported through a callback.
package execution

import (
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"main/internal/book"
	"main/internal/obs"
	"main/internal/pool"
	"main/internal/schema"
)

// DefaultFillLatency pads each simulated matching cycle. It stands in
// for venue round-trip time and carries no semantic weight.
const DefaultFillLatency = 100 * time.Microsecond

// BookSource resolves a symbol to its order book. The ingest handler
// satisfies this.
type BookSource interface {
	Book(symbol string) (*book.Book, bool)
}

// ReportCallback consumes execution reports. New reports arrive on the
// submitter's goroutine, Canceled on the canceler's, everything else
// on the worker. Implementations must be thread-safe and non-blocking;
// the report is only valid for the duration of the call.
type ReportCallback func(*Report)

// Engine owns the simulated execution path. One worker goroutine
// drains a FIFO of order ids; a mutex guards the pending map and the
// queue; reports are pooled.
type Engine struct {
	books   BookSource
	logger  *zap.Logger
	metrics *obs.Metrics

	nextID atomic.Uint64

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[schema.OrderID]*Order
	queue   []schema.OrderID
	running bool

	reports  *pool.Pool[Report]
	callback ReportCallback
	latency  time.Duration
	wg       sync.WaitGroup
}

// NewEngine creates a stopped engine reading book tops from books.
func NewEngine(books BookSource, metrics *obs.Metrics, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		books:   books,
		logger:  logger,
		metrics: metrics,
		pending: make(map[schema.OrderID]*Order),
		reports: pool.New[Report](),
		latency: DefaultFillLatency,
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// SetReportCallback installs the report consumer. Set before Start.
func (e *Engine) SetReportCallback(cb ReportCallback) {
	e.callback = cb
}

// SetFillLatency overrides the simulated matching delay.
func (e *Engine) SetFillLatency(d time.Duration) {
	if d >= 0 {
		e.latency = d
	}
}

// Start launches the worker.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.processOrders()
	e.logger.Info("execution engine started")
}

// Stop flips the running flag, wakes the worker and joins it. Orders
// still queued are abandoned without a terminal report.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.cond.Broadcast()
	e.mu.Unlock()

	e.wg.Wait()
	e.logger.Info("execution engine stopped")
}

// SubmitOrder turns a signal into an internal order, emits its New
// report on the calling goroutine and hands it to the worker. The
// returned id is strictly greater than any id this engine returned
// before.
func (e *Engine) SubmitOrder(sig schema.Signal) schema.OrderID {
	id := schema.OrderID(e.nextID.Add(1))

	side := schema.SideBuy
	if sig.Type == schema.SignalSell {
		side = schema.SideSell
	}
	order := &Order{
		ID:        id,
		Price:     sig.Price,
		Quantity:  sig.Quantity,
		Side:      side,
		Symbol:    sig.Symbol,
		Timestamp: sig.Timestamp,
	}

	e.emit(id, StatusNew, sig.Price, 0, sig.Quantity, sig.Symbol)

	e.mu.Lock()
	e.pending[id] = order
	e.queue = append(e.queue, id)
	e.cond.Signal()
	e.mu.Unlock()

	e.metrics.IncOrderSubmitted()
	return id
}

// CancelOrder removes a pending order and emits a Canceled report with
// the unfilled remainder. Unknown ids and orders already past the
// queue (being filled) return false. A worker cycle racing this cancel
// may still deliver one partial fill; consumers must tolerate either
// arrival order.
func (e *Engine) CancelOrder(id schema.OrderID) bool {
	e.mu.Lock()
	order, ok := e.pending[id]
	if !ok || e.statusLocked(id) == StatusFilled {
		e.mu.Unlock()
		return false
	}
	price, leaves, symbol := order.Price, order.Quantity, order.Symbol
	delete(e.pending, id)
	if i := slices.Index(e.queue, id); i >= 0 {
		e.queue = slices.Delete(e.queue, i, i+1)
	}
	e.mu.Unlock()

	e.emit(id, StatusCanceled, price, 0, leaves, symbol)
	e.metrics.IncOrderCanceled()
	return true
}

// OrderStatus derives a coarse status from queue position: absent ids
// are Rejected, ids off the queue are Filled, the queue head is
// Pending and everything behind it is New. This is an observability
// hook, decoupled from per-report statuses.
func (e *Engine) OrderStatus(id schema.OrderID) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.pending[id]; !ok {
		return StatusRejected
	}
	return e.statusLocked(id)
}

func (e *Engine) statusLocked(id schema.OrderID) Status {
	i := slices.Index(e.queue, id)
	switch {
	case i < 0:
		return StatusFilled
	case i == 0:
		return StatusPending
	default:
		return StatusNew
	}
}

// PendingCount returns the number of in-flight orders.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *Engine) processOrders() {
	defer e.wg.Done()

	for {
		e.mu.Lock()
		for e.running && len(e.queue) == 0 {
			e.cond.Wait()
		}
		if !e.running {
			e.mu.Unlock()
			return
		}
		id := e.queue[0]
		e.queue = e.queue[1:]
		order, ok := e.pending[id]
		var snapshot Order
		if ok {
			snapshot = *order
		}
		e.mu.Unlock()

		if !ok {
			continue // canceled while queued
		}
		e.simulateExecution(snapshot)
	}
}

func (e *Engine) simulateExecution(order Order) {
	b, ok := e.books.Book(order.Symbol)
	if !ok {
		e.removePending(order.ID)
		e.emit(order.ID, StatusRejected, order.Price, 0, order.Quantity, order.Symbol)
		return
	}

	bestBid, hasBid := b.BestBid()
	bestAsk, hasAsk := b.BestAsk()

	canFill := false
	fillPrice := order.Price
	switch order.Side {
	case schema.SideBuy:
		if hasAsk && order.Price >= bestAsk {
			canFill = true
			fillPrice = bestAsk
		}
	case schema.SideSell:
		if hasBid && order.Price <= bestBid {
			canFill = true
			fillPrice = bestBid
		}
	}

	if e.latency > 0 {
		time.Sleep(e.latency)
	}

	if canFill || order.Quantity == 0 {
		if !e.removePending(order.ID) {
			return // lost the race against a cancel
		}
		e.emit(order.ID, StatusFilled, fillPrice, order.Quantity, 0, order.Symbol)
		return
	}

	execQty := schema.Quantity(1 + rand.Uint32N(uint32(order.Quantity)))
	if execQty >= order.Quantity {
		execQty = order.Quantity
	}

	e.mu.Lock()
	pending, alive := e.pending[order.ID]
	if alive {
		if execQty >= pending.Quantity {
			execQty = pending.Quantity
		}
		pending.Quantity -= execQty
		if pending.Quantity == 0 {
			// The random cut consumed the remainder; report it as a
			// fill below instead of re-queueing an empty order.
			delete(e.pending, order.ID)
		} else {
			e.queue = append(e.queue, order.ID)
			e.cond.Signal()
		}
	}
	leaves := schema.Quantity(0)
	if alive {
		if p, still := e.pending[order.ID]; still {
			leaves = p.Quantity
		}
	}
	e.mu.Unlock()

	if !alive {
		return // canceled between pop and fill
	}
	if leaves == 0 {
		e.emit(order.ID, StatusFilled, order.Price, execQty, 0, order.Symbol)
		return
	}
	e.emit(order.ID, StatusPartiallyFilled, order.Price, execQty, leaves, order.Symbol)
}

func (e *Engine) removePending(id schema.OrderID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.pending[id]; !ok {
		return false
	}
	delete(e.pending, id)
	return true
}

func (e *Engine) emit(id schema.OrderID, status Status, price schema.Price, execQty, leaves schema.Quantity, symbol string) {
	if e.callback == nil {
		return
	}
	r := e.reports.Get()
	r.OrderID = id
	r.Status = status
	r.Price = price
	r.ExecQuantity = execQty
	r.LeavesQuantity = leaves
	r.Symbol = symbol
	r.Timestamp = schema.Now()
	e.callback(r)
	e.reports.Put(r)
	e.metrics.IncReport()
}
