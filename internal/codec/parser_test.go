package codec

import (
	"bytes"
	"testing"

	"main/internal/schema"
)

func sampleFeed() ([]byte, []schema.Message) {
	want := []schema.Message{
		{
			Header: schema.Header{Timestamp: 1000, Type: schema.MessageAddOrder, SymbolLen: 4},
			Symbol: []byte("AAPL"),
			Add:    schema.AddOrder{OrderID: 1, Price: 10050, Quantity: 300, Side: schema.SideBuy},
		},
		{
			Header: schema.Header{Timestamp: 1001, Type: schema.MessageModifyOrder, SymbolLen: 4},
			Symbol: []byte("AAPL"),
			Modify: schema.ModifyOrder{OrderID: 1, NewQuantity: 150},
		},
		{
			Header: schema.Header{Timestamp: 1002, Type: schema.MessageExecuteOrder, SymbolLen: 4},
			Symbol: []byte("MSFT"),
			Execute: schema.ExecuteOrder{
				OrderID: 7, ExecQuantity: 25, ExecPrice: 30125,
			},
		},
		{
			Header: schema.Header{Timestamp: 1003, Type: schema.MessageTrade, SymbolLen: 4},
			Symbol: []byte("MSFT"),
			Trade:  schema.Trade{Price: 30120, Quantity: 10, AggressorSide: schema.SideSell},
		},
		{
			Header: schema.Header{Timestamp: 1004, Type: schema.MessageCancelOrder, SymbolLen: 4},
			Symbol: []byte("AAPL"),
			Cancel: schema.CancelOrder{OrderID: 1},
		},
		{
			Header: schema.Header{Timestamp: 1005, Type: schema.MessageHeartbeat, SymbolLen: 0},
			Symbol: []byte{},
		},
	}

	var buf []byte
	buf = AppendAddOrder(buf, 1000, "AAPL", want[0].Add)
	buf = AppendModifyOrder(buf, 1001, "AAPL", want[1].Modify)
	buf = AppendExecuteOrder(buf, 1002, "MSFT", want[2].Execute)
	buf = AppendTrade(buf, 1003, "MSFT", want[3].Trade)
	buf = AppendCancelOrder(buf, 1004, "AAPL", want[4].Cancel)
	buf = AppendHeartbeat(buf, 1005, "")
	return buf, want
}

func messageEqual(got, want schema.Message) bool {
	if got.Header != want.Header {
		return false
	}
	if !bytes.Equal(got.Symbol, want.Symbol) {
		return false
	}
	return got.Add == want.Add &&
		got.Modify == want.Modify &&
		got.Cancel == want.Cancel &&
		got.Execute == want.Execute &&
		got.Trade == want.Trade
}

func TestParserRoundTrip(t *testing.T) {
	buf, want := sampleFeed()

	var p Parser
	p.Reset(buf)

	var msg schema.Message
	for i := range want {
		if !p.Next(&msg) {
			t.Fatalf("message %d: Next returned false", i)
		}
		if !messageEqual(msg, want[i]) {
			t.Fatalf("message %d mismatch: got %+v want %+v", i, msg, want[i])
		}
	}
	if p.Next(&msg) {
		t.Fatalf("parser yielded a message past the end of the feed")
	}
	if p.Offset() != len(buf) {
		t.Fatalf("offset mismatch: got %d want %d", p.Offset(), len(buf))
	}
}

func TestParserStopsAtEveryTruncation(t *testing.T) {
	buf, want := sampleFeed()

	// Complete-message boundaries within buf.
	boundaries := make([]int, 0, len(want)+1)
	off := 0
	boundaries = append(boundaries, off)
	for _, m := range want {
		off += HeaderSize + PayloadSize(m.Type) + int(m.SymbolLen)
		boundaries = append(boundaries, off)
	}

	for cut := 0; cut < len(buf); cut++ {
		var p Parser
		p.Reset(buf[:cut])

		var msg schema.Message
		for p.Next(&msg) {
		}

		// The parser must consume exactly up to the last boundary
		// that fits inside the cut.
		wantOff := 0
		for _, b := range boundaries {
			if b <= cut {
				wantOff = b
			}
		}
		if p.Offset() != wantOff {
			t.Fatalf("cut %d: offset mismatch: got %d want %d", cut, p.Offset(), wantOff)
		}
	}
}

func TestParserUnknownTypeZeroPayload(t *testing.T) {
	buf := AppendMessage(nil, 42, schema.MessageType(99), "XYZ", nil)
	buf = AppendHeartbeat(buf, 43, "XYZ")

	var p Parser
	p.Reset(buf)

	var msg schema.Message
	if !p.Next(&msg) {
		t.Fatalf("unknown type message was not parsed")
	}
	if msg.Type != schema.MessageType(99) || string(msg.Symbol) != "XYZ" {
		t.Fatalf("unknown type mismatch: got type %d symbol %q", msg.Type, msg.Symbol)
	}
	if !p.Next(&msg) {
		t.Fatalf("message after unknown type was not parsed")
	}
	if msg.Type != schema.MessageHeartbeat {
		t.Fatalf("type mismatch after unknown: got %d want %d", msg.Type, schema.MessageHeartbeat)
	}
}

func TestParserSymbolBorrowsBuffer(t *testing.T) {
	buf := AppendHeartbeat(nil, 1, "ABC")

	var p Parser
	p.Reset(buf)

	var msg schema.Message
	if !p.Next(&msg) {
		t.Fatalf("heartbeat was not parsed")
	}
	buf[HeaderSize] = 'Z'
	if string(msg.Symbol) != "ZBC" {
		t.Fatalf("symbol does not alias the window: got %q", msg.Symbol)
	}
}

func TestDecodeSideValues(t *testing.T) {
	var buf [AddOrderPayloadSize]byte
	EncodeAddOrder(buf[:], schema.AddOrder{OrderID: 1, Side: schema.SideBuy})
	if buf[20] != 0 {
		t.Fatalf("buy side byte mismatch: got %d want 0", buf[20])
	}
	EncodeAddOrder(buf[:], schema.AddOrder{OrderID: 1, Side: schema.SideSell})
	if buf[20] != 1 {
		t.Fatalf("sell side byte mismatch: got %d want 1", buf[20])
	}

	buf[20] = 9
	add, ok := DecodeAddOrder(buf[:])
	if !ok || add.Side != schema.SideUnknown {
		t.Fatalf("invalid side byte mismatch: got %v want %v", add.Side, schema.SideUnknown)
	}
}

func BenchmarkParserNext(b *testing.B) {
	buf, _ := sampleFeed()

	var p Parser
	var msg schema.Message
	for b.Loop() {
		p.Reset(buf)
		for p.Next(&msg) {
		}
	}
}
