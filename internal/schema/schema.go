package schema

import "time"

// Price is a fixed-point scaled integer. PriceScale units equal one
// currency unit, so 10050 reads as 100.50.
type Price int64

// PriceScale is the number of Price units per currency unit.
const PriceScale = 100

// Float64 converts a scaled price to a floating-point currency amount.
func (p Price) Float64() float64 {
	return float64(p) / PriceScale
}

// Quantity is an unsigned order or trade size.
type Quantity uint32

// OrderID identifies an order inside one feed or engine.
type OrderID uint64

// Timestamp is nanoseconds since the Unix epoch.
type Timestamp uint64

// Now returns the current wall clock as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now().UnixNano())
}

// Side describes order direction.
type Side uint8

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// MessageType is the category byte of a feed message.
type MessageType uint8

const (
	MessageUnknown MessageType = iota
	MessageAddOrder
	MessageModifyOrder
	MessageCancelOrder
	MessageExecuteOrder
	MessageTrade
	MessageSnapshot
	MessageHeartbeat
)

// Header is the fixed preamble of every feed message.
type Header struct {
	Timestamp Timestamp
	Type      MessageType
	SymbolLen uint8
}
