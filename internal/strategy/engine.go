// Package strategy runs trading strategies against order book updates.
// Strategies execute on the ingest goroutine as a continuation of each
// book mutation; whatever they emit is delivered through the signal
// callback in emission order.
package strategy

import (
	"go.uber.org/zap"

	"main/internal/book"
	"main/internal/schema"
)

// Strategy is the capability a pluggable strategy implements.
type Strategy interface {
	Initialize()
	ProcessUpdate(b *book.Book) []schema.Signal
	Name() string
}

// SignalCallback receives one signal per emission. It runs on the
// ingest goroutine and must not block.
type SignalCallback func(schema.Signal)

// Engine dispatches book updates to registered strategies. Register
// before Start; ProcessOrderBook is a no-op until Start and after Stop.
type Engine struct {
	strategies []Strategy
	callback   SignalCallback
	logger     *zap.Logger
	running    bool
}

// NewEngine creates an engine with no strategies registered.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Register appends a strategy. Strategies run in registration order.
func (e *Engine) Register(s Strategy) {
	e.strategies = append(e.strategies, s)
	e.logger.Info("strategy registered", zap.String("strategy", s.Name()))
}

// SetSignalCallback installs the signal consumer.
func (e *Engine) SetSignalCallback(cb SignalCallback) {
	e.callback = cb
}

// Start initializes every registered strategy and enables processing.
func (e *Engine) Start() {
	if e.running {
		return
	}
	for _, s := range e.strategies {
		s.Initialize()
	}
	e.running = true
	e.logger.Info("strategy engine started", zap.Int("strategies", len(e.strategies)))
}

// Stop disables processing.
func (e *Engine) Stop() {
	e.running = false
}

// Running reports whether updates are being processed.
func (e *Engine) Running() bool {
	return e.running
}

// ProcessOrderBook runs every strategy against the updated book and
// delivers emitted signals in order.
func (e *Engine) ProcessOrderBook(b *book.Book) {
	if !e.running || b == nil {
		return
	}
	for _, s := range e.strategies {
		for _, sig := range s.ProcessUpdate(b) {
			if e.callback != nil {
				e.callback(sig)
			}
		}
	}
}
