package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

// EncodeTrade serializes a trade print into a fixed-size payload.
func EncodeTrade(dst []byte, trade schema.Trade) []byte {
	if cap(dst) < TradePayloadSize {
		dst = make([]byte, TradePayloadSize)
	} else {
		dst = dst[:TradePayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(trade.Price))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(trade.Quantity))
	dst[12] = encodeSide(trade.AggressorSide)

	return dst
}

// DecodeTrade parses a fixed-size trade payload.
func DecodeTrade(src []byte) (schema.Trade, bool) {
	if len(src) < TradePayloadSize {
		return schema.Trade{}, false
	}
	return schema.Trade{
		Price:         schema.Price(int64(binary.LittleEndian.Uint64(src[0:8]))),
		Quantity:      schema.Quantity(binary.LittleEndian.Uint32(src[8:12])),
		AggressorSide: decodeSide(src[12]),
	}, true
}

// AppendMessage appends one complete wire message to dst: header,
// payload, then symbol bytes. Symbols longer than the one-byte length
// field allows are truncated.
func AppendMessage(dst []byte, ts schema.Timestamp, t schema.MessageType, symbol string, payload []byte) []byte {
	if len(symbol) > maxSymbolLen {
		symbol = symbol[:maxSymbolLen]
	}

	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(ts))
	hdr[8] = byte(t)
	hdr[9] = uint8(len(symbol))

	dst = append(dst, hdr[:]...)
	dst = append(dst, payload...)
	dst = append(dst, symbol...)
	return dst
}

// AppendAddOrder appends a complete add message to dst.
func AppendAddOrder(dst []byte, ts schema.Timestamp, symbol string, add schema.AddOrder) []byte {
	var buf [AddOrderPayloadSize]byte
	EncodeAddOrder(buf[:], add)
	return AppendMessage(dst, ts, schema.MessageAddOrder, symbol, buf[:])
}

// AppendModifyOrder appends a complete modify message to dst.
func AppendModifyOrder(dst []byte, ts schema.Timestamp, symbol string, mod schema.ModifyOrder) []byte {
	var buf [ModifyOrderPayloadSize]byte
	EncodeModifyOrder(buf[:], mod)
	return AppendMessage(dst, ts, schema.MessageModifyOrder, symbol, buf[:])
}

// AppendCancelOrder appends a complete cancel message to dst.
func AppendCancelOrder(dst []byte, ts schema.Timestamp, symbol string, cancel schema.CancelOrder) []byte {
	var buf [CancelOrderPayloadSize]byte
	EncodeCancelOrder(buf[:], cancel)
	return AppendMessage(dst, ts, schema.MessageCancelOrder, symbol, buf[:])
}

// AppendExecuteOrder appends a complete execution message to dst.
func AppendExecuteOrder(dst []byte, ts schema.Timestamp, symbol string, exec schema.ExecuteOrder) []byte {
	var buf [ExecuteOrderPayloadSize]byte
	EncodeExecuteOrder(buf[:], exec)
	return AppendMessage(dst, ts, schema.MessageExecuteOrder, symbol, buf[:])
}

// AppendTrade appends a complete trade message to dst.
func AppendTrade(dst []byte, ts schema.Timestamp, symbol string, trade schema.Trade) []byte {
	var buf [TradePayloadSize]byte
	EncodeTrade(buf[:], trade)
	return AppendMessage(dst, ts, schema.MessageTrade, symbol, buf[:])
}

// AppendHeartbeat appends an empty heartbeat message to dst.
func AppendHeartbeat(dst []byte, ts schema.Timestamp, symbol string) []byte {
	return AppendMessage(dst, ts, schema.MessageHeartbeat, symbol, nil)
}

// AppendSnapshot appends an empty snapshot marker to dst.
func AppendSnapshot(dst []byte, ts schema.Timestamp, symbol string) []byte {
	return AppendMessage(dst, ts, schema.MessageSnapshot, symbol, nil)
}
