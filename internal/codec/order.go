package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

// EncodeAddOrder serializes an add into a fixed-size payload.
func EncodeAddOrder(dst []byte, add schema.AddOrder) []byte {
	if cap(dst) < AddOrderPayloadSize {
		dst = make([]byte, AddOrderPayloadSize)
	} else {
		dst = dst[:AddOrderPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(add.OrderID))
	binary.LittleEndian.PutUint64(dst[8:16], uint64(add.Price))
	binary.LittleEndian.PutUint32(dst[16:20], uint32(add.Quantity))
	dst[20] = encodeSide(add.Side)

	return dst
}

// DecodeAddOrder parses a fixed-size add payload.
func DecodeAddOrder(src []byte) (schema.AddOrder, bool) {
	if len(src) < AddOrderPayloadSize {
		return schema.AddOrder{}, false
	}
	return schema.AddOrder{
		OrderID:  schema.OrderID(binary.LittleEndian.Uint64(src[0:8])),
		Price:    schema.Price(int64(binary.LittleEndian.Uint64(src[8:16]))),
		Quantity: schema.Quantity(binary.LittleEndian.Uint32(src[16:20])),
		Side:     decodeSide(src[20]),
	}, true
}

// EncodeModifyOrder serializes a modify into a fixed-size payload.
func EncodeModifyOrder(dst []byte, mod schema.ModifyOrder) []byte {
	if cap(dst) < ModifyOrderPayloadSize {
		dst = make([]byte, ModifyOrderPayloadSize)
	} else {
		dst = dst[:ModifyOrderPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(mod.OrderID))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(mod.NewQuantity))

	return dst
}

// DecodeModifyOrder parses a fixed-size modify payload.
func DecodeModifyOrder(src []byte) (schema.ModifyOrder, bool) {
	if len(src) < ModifyOrderPayloadSize {
		return schema.ModifyOrder{}, false
	}
	return schema.ModifyOrder{
		OrderID:     schema.OrderID(binary.LittleEndian.Uint64(src[0:8])),
		NewQuantity: schema.Quantity(binary.LittleEndian.Uint32(src[8:12])),
	}, true
}

// EncodeCancelOrder serializes a cancel into a fixed-size payload.
func EncodeCancelOrder(dst []byte, cancel schema.CancelOrder) []byte {
	if cap(dst) < CancelOrderPayloadSize {
		dst = make([]byte, CancelOrderPayloadSize)
	} else {
		dst = dst[:CancelOrderPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(cancel.OrderID))

	return dst
}

// DecodeCancelOrder parses a fixed-size cancel payload.
func DecodeCancelOrder(src []byte) (schema.CancelOrder, bool) {
	if len(src) < CancelOrderPayloadSize {
		return schema.CancelOrder{}, false
	}
	return schema.CancelOrder{
		OrderID: schema.OrderID(binary.LittleEndian.Uint64(src[0:8])),
	}, true
}

// EncodeExecuteOrder serializes an execution into a fixed-size payload.
func EncodeExecuteOrder(dst []byte, exec schema.ExecuteOrder) []byte {
	if cap(dst) < ExecuteOrderPayloadSize {
		dst = make([]byte, ExecuteOrderPayloadSize)
	} else {
		dst = dst[:ExecuteOrderPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(exec.OrderID))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(exec.ExecQuantity))
	binary.LittleEndian.PutUint64(dst[12:20], uint64(exec.ExecPrice))

	return dst
}

// DecodeExecuteOrder parses a fixed-size execution payload.
func DecodeExecuteOrder(src []byte) (schema.ExecuteOrder, bool) {
	if len(src) < ExecuteOrderPayloadSize {
		return schema.ExecuteOrder{}, false
	}
	return schema.ExecuteOrder{
		OrderID:      schema.OrderID(binary.LittleEndian.Uint64(src[0:8])),
		ExecQuantity: schema.Quantity(binary.LittleEndian.Uint32(src[8:12])),
		ExecPrice:    schema.Price(int64(binary.LittleEndian.Uint64(src[12:20]))),
	}, true
}
