package schema

// SignalType describes the direction a strategy wants to trade.
type SignalType uint8

const (
	SignalUnknown SignalType = iota
	SignalBuy
	SignalSell
)

func (t SignalType) String() string {
	switch t {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Signal is a trading intention emitted by a strategy.
type Signal struct {
	Type       SignalType
	Symbol     string
	Price      Price
	Quantity   Quantity
	Confidence float64
	Timestamp  Timestamp
}
