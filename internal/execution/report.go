package execution

import "main/internal/schema"

// Status is the lifecycle stage of an internal order.
type Status uint8

const (
	StatusNew Status = iota
	StatusPending
	StatusPartiallyFilled
	StatusFilled
	StatusCanceled
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusPending:
		return "PENDING"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCanceled:
		return "CANCELED"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further reports follow this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusRejected:
		return true
	default:
		return false
	}
}

// Order is an internal order pending simulated execution.
type Order struct {
	ID        schema.OrderID
	Price     schema.Price
	Quantity  schema.Quantity
	Side      schema.Side
	Symbol    string
	Timestamp schema.Timestamp
}

// Report is one lifecycle event of an internal order. Reports handed
// to the callback come from a pool and are only valid for the duration
// of the call.
type Report struct {
	OrderID        schema.OrderID
	Status         Status
	Price          schema.Price
	ExecQuantity   schema.Quantity
	LeavesQuantity schema.Quantity
	Symbol         string
	Timestamp      schema.Timestamp
}
