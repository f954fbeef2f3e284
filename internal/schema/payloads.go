package schema

// AddOrder introduces a new resting order at a price level.
type AddOrder struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
	Side     Side
}

// ModifyOrder replaces the open quantity of a resting order.
type ModifyOrder struct {
	OrderID     OrderID
	NewQuantity Quantity
}

// CancelOrder removes a resting order.
type CancelOrder struct {
	OrderID OrderID
}

// ExecuteOrder reports quantity executed against a resting order.
type ExecuteOrder struct {
	OrderID      OrderID
	ExecQuantity Quantity
	ExecPrice    Price
}

// Trade reports an anonymous trade print.
type Trade struct {
	Price         Price
	Quantity      Quantity
	AggressorSide Side
}

// Message is one parsed feed message. Only the payload field matching
// Type carries data; the others stay zero. Symbol borrows the bytes of
// the buffer the message was parsed from and is only valid until the
// next parse step.
type Message struct {
	Header
	Symbol []byte

	Add     AddOrder
	Modify  ModifyOrder
	Cancel  CancelOrder
	Execute ExecuteOrder
	Trade   Trade
}
