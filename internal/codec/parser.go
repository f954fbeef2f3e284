package codec

import "main/internal/schema"

// Parser walks a linear byte window and yields the messages it fully
// contains, in order. Nothing is copied: Message.Symbol borrows from
// the window, so a yielded message is only valid until the window is
// recycled.
type Parser struct {
	buf []byte
	off int
}

// Reset points the parser at a new window and rewinds the offset.
func (p *Parser) Reset(buf []byte) {
	p.buf = buf
	p.off = 0
}

// Offset returns the number of bytes consumed so far. After Next has
// returned false this marks the end of the last complete message; the
// bytes past it belong to a message still in flight.
func (p *Parser) Offset() int {
	return p.off
}

// Next parses the message at the current offset into msg. It returns
// false when the remaining bytes do not hold a complete message,
// leaving the offset untouched.
func (p *Parser) Next(msg *schema.Message) bool {
	rest := p.buf[p.off:]
	h, ok := DecodeHeader(rest)
	if !ok {
		return false
	}

	total := HeaderSize + PayloadSize(h.Type) + int(h.SymbolLen)
	if len(rest) < total {
		return false
	}

	payload := rest[HeaderSize : total-int(h.SymbolLen)]
	*msg = schema.Message{Header: h}
	msg.Symbol = rest[total-int(h.SymbolLen) : total]

	switch h.Type {
	case schema.MessageAddOrder:
		msg.Add, _ = DecodeAddOrder(payload)
	case schema.MessageModifyOrder:
		msg.Modify, _ = DecodeModifyOrder(payload)
	case schema.MessageCancelOrder:
		msg.Cancel, _ = DecodeCancelOrder(payload)
	case schema.MessageExecuteOrder:
		msg.Execute, _ = DecodeExecuteOrder(payload)
	case schema.MessageTrade:
		msg.Trade, _ = DecodeTrade(payload)
	}

	p.off += total
	return true
}
