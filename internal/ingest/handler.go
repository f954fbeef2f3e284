// Package ingest turns raw feed bytes into order book state. It owns
// the byte ring, the per-symbol book table, and the subscription fan
// out; everything runs on the single ingest goroutine.
package ingest

import (
	"go.uber.org/zap"

	"main/internal/book"
	"main/internal/codec"
	"main/internal/obs"
	"main/internal/schema"
)

// Callback receives every parsed message for a subscribed symbol. The
// message's symbol bytes are only valid for the duration of the call.
type Callback func(msg *schema.Message)

// BookUpdateFunc observes a book right after a message mutated it.
type BookUpdateFunc func(b *book.Book)

// Handler parses feed buffers and applies them to per-symbol books.
// Not safe for concurrent use; see the package comment.
type Handler struct {
	ring    *RingBuffer
	parser  codec.Parser
	books   map[string]*book.Book
	subs    map[string][]Callback
	onBook  BookUpdateFunc
	metrics *obs.Metrics
	logger  *zap.Logger

	// scratch carries the partial tail of a ring drain into the next
	// round so a message split across drains still parses whole.
	scratch []byte
}

// NewHandler creates a handler with a ring of the given byte capacity.
func NewHandler(bufferSize int, metrics *obs.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ring:    NewRingBuffer(bufferSize),
		books:   make(map[string]*book.Book),
		subs:    make(map[string][]Callback),
		metrics: metrics,
		logger:  logger,
	}
}

// Ring exposes the feed ring for the producer side.
func (h *Handler) Ring() *RingBuffer {
	return h.ring
}

// Subscribe registers a callback for a symbol and creates the symbol's
// book on first subscription. A nil callback just creates the book.
func (h *Handler) Subscribe(symbol string, cb Callback) {
	if _, ok := h.books[symbol]; !ok {
		h.books[symbol] = book.New(symbol)
		h.logger.Debug("order book created", zap.String("symbol", symbol))
	}
	if cb != nil {
		h.subs[symbol] = append(h.subs[symbol], cb)
	}
}

// Unsubscribe drops all callbacks for a symbol. The book stays.
func (h *Handler) Unsubscribe(symbol string) {
	delete(h.subs, symbol)
}

// Book returns the book for a symbol. Safe to call from the execution
// worker: the map is only written by Subscribe before processing
// starts, and the book's top-of-book reads are atomic.
func (h *Handler) Book(symbol string) (*book.Book, bool) {
	b, ok := h.books[symbol]
	return b, ok
}

// OnBookUpdate sets the hook invoked after each book mutation. The
// strategy engine hangs off this hook.
func (h *Handler) OnBookUpdate(fn BookUpdateFunc) {
	h.onBook = fn
}

// ProcessBuffer parses the messages fully contained in data, applies
// them in feed order, and returns the number of bytes consumed. The
// tail past the returned count holds a partial message, if any.
func (h *Handler) ProcessBuffer(data []byte) int {
	h.parser.Reset(data)

	var msg schema.Message
	for h.parser.Next(&msg) {
		h.metrics.ObserveMessage(msg.Type)
		h.dispatch(&msg)
	}

	consumed := h.parser.Offset()
	h.metrics.AddBytesConsumed(consumed)
	return consumed
}

// ProcessRing drains the feed ring and processes what it finds,
// carrying any partial message tail over to the next call. It returns
// the number of whole-message bytes consumed this round.
func (h *Handler) ProcessRing() int {
	avail := h.ring.ReadAvailable()
	if avail == 0 && len(h.scratch) == 0 {
		return 0
	}

	tail := len(h.scratch)
	if cap(h.scratch) < tail+avail {
		grown := make([]byte, tail, tail+avail)
		copy(grown, h.scratch)
		h.scratch = grown
	}
	h.scratch = h.scratch[:tail+avail]
	h.ring.Read(h.scratch[tail:])

	consumed := h.ProcessBuffer(h.scratch)
	rest := copy(h.scratch, h.scratch[consumed:])
	h.scratch = h.scratch[:rest]
	return consumed
}

func (h *Handler) dispatch(msg *schema.Message) {
	symbol := string(msg.Symbol)

	for _, cb := range h.subs[symbol] {
		cb(msg)
	}

	b, ok := h.books[symbol]
	if !ok {
		return
	}

	mutated := false
	switch msg.Type {
	case schema.MessageAddOrder:
		mutated = b.AddOrder(book.Order{
			ID:        msg.Add.OrderID,
			Price:     msg.Add.Price,
			Quantity:  msg.Add.Quantity,
			Side:      msg.Add.Side,
			Timestamp: msg.Timestamp,
			Symbol:    symbol,
		})
	case schema.MessageModifyOrder:
		mutated = b.ModifyOrder(msg.Modify.OrderID, msg.Modify.NewQuantity)
	case schema.MessageCancelOrder:
		mutated = b.CancelOrder(msg.Cancel.OrderID)
	case schema.MessageExecuteOrder:
		mutated = b.ExecuteOrder(msg.Execute.OrderID, msg.Execute.ExecQuantity)
	default:
		// Trade prints, snapshots and heartbeats do not touch the book.
	}

	if mutated && h.onBook != nil {
		h.onBook(b)
	}
}
