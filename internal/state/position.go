// Package state tracks signed per-symbol positions built from
// execution fills, and snapshots them to disk.
package state

import (
	"sync"

	"main/internal/schema"
)

// Tracker accumulates signed positions per symbol. Buys add, sells
// subtract. Safe for concurrent use; fills arrive on the execution
// worker while readers poll from elsewhere.
type Tracker struct {
	mu        sync.RWMutex
	positions map[string]int64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{positions: make(map[string]int64)}
}

// ApplyFill updates the symbol's position and returns the new value.
func (t *Tracker) ApplyFill(symbol string, side schema.SignalType, qty schema.Quantity) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch side {
	case schema.SignalBuy:
		t.positions[symbol] += int64(qty)
	case schema.SignalSell:
		t.positions[symbol] -= int64(qty)
	}
	return t.positions[symbol]
}

// Position returns the current signed quantity for a symbol.
func (t *Tracker) Position(symbol string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.positions[symbol]
}

// Count returns the number of symbols with a recorded fill.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.positions)
}

// Restore replaces all positions with a snapshot's entries.
func (t *Tracker) Restore(snapshot Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions = make(map[string]int64, len(snapshot.Positions))
	for _, entry := range snapshot.Positions {
		t.positions[entry.Symbol] = entry.Qty
	}
}
