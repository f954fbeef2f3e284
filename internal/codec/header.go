package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

// HeaderSize is the fixed length of the feed message preamble.
const HeaderSize = 10

// Fixed payload lengths by message type. Snapshot and Heartbeat carry
// no payload.
const (
	AddOrderPayloadSize     = 21
	ModifyOrderPayloadSize  = 12
	CancelOrderPayloadSize  = 8
	ExecuteOrderPayloadSize = 20
	TradePayloadSize        = 13
)

const maxSymbolLen = 255

// PayloadSize returns the payload length for a message type. Types
// without a defined payload, including unknown ones, report zero.
func PayloadSize(t schema.MessageType) int {
	switch t {
	case schema.MessageAddOrder:
		return AddOrderPayloadSize
	case schema.MessageModifyOrder:
		return ModifyOrderPayloadSize
	case schema.MessageCancelOrder:
		return CancelOrderPayloadSize
	case schema.MessageExecuteOrder:
		return ExecuteOrderPayloadSize
	case schema.MessageTrade:
		return TradePayloadSize
	default:
		return 0
	}
}

// EncodeHeader serializes a message header into a fixed-size buffer.
func EncodeHeader(dst []byte, h schema.Header) []byte {
	if cap(dst) < HeaderSize {
		dst = make([]byte, HeaderSize)
	} else {
		dst = dst[:HeaderSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(h.Timestamp))
	dst[8] = byte(h.Type)
	dst[9] = h.SymbolLen

	return dst
}

// DecodeHeader parses a message header.
func DecodeHeader(src []byte) (schema.Header, bool) {
	if len(src) < HeaderSize {
		return schema.Header{}, false
	}
	return schema.Header{
		Timestamp: schema.Timestamp(binary.LittleEndian.Uint64(src[0:8])),
		Type:      schema.MessageType(src[8]),
		SymbolLen: src[9],
	}, true
}

// The feed encodes buy as 0 and sell as 1 in side bytes.
func encodeSide(s schema.Side) byte {
	if s == schema.SideSell {
		return 1
	}
	return 0
}

func decodeSide(b byte) schema.Side {
	switch b {
	case 0:
		return schema.SideBuy
	case 1:
		return schema.SideSell
	default:
		return schema.SideUnknown
	}
}
