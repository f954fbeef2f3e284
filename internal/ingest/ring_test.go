package ingest

import (
	"bytes"
	"testing"
)

func TestRingBufferReservesOneByte(t *testing.T) {
	r := NewRingBuffer(8)
	if r.WriteAvailable() != 7 {
		t.Fatalf("write available on empty ring: got %d want 7", r.WriteAvailable())
	}

	n := r.Write([]byte("12345678"))
	if n != 7 {
		t.Fatalf("write into 8-byte ring: got %d want 7", n)
	}
	if r.WriteAvailable() != 0 || r.ReadAvailable() != 7 {
		t.Fatalf("availability after fill: write=%d read=%d", r.WriteAvailable(), r.ReadAvailable())
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	r := NewRingBuffer(8)

	if n := r.Write([]byte("abcde")); n != 5 {
		t.Fatalf("first write: got %d want 5", n)
	}
	dst := make([]byte, 4)
	if n := r.Read(dst); n != 4 || !bytes.Equal(dst, []byte("abcd")) {
		t.Fatalf("first read: got %d %q", n, dst)
	}

	// Crosses the physical end of the buffer.
	if n := r.Write([]byte("fghij")); n != 5 {
		t.Fatalf("wrapping write: got %d want 5", n)
	}
	dst = make([]byte, 6)
	if n := r.Read(dst); n != 6 || !bytes.Equal(dst, []byte("efghij")) {
		t.Fatalf("wrapping read: got %d %q", n, dst)
	}
	if r.ReadAvailable() != 0 {
		t.Fatalf("ring not empty after draining: %d", r.ReadAvailable())
	}
}

func TestRingBufferReset(t *testing.T) {
	r := NewRingBuffer(16)
	r.Write([]byte("hello"))
	r.Reset()
	if r.ReadAvailable() != 0 || r.WriteAvailable() != 15 {
		t.Fatalf("reset did not rewind: read=%d write=%d", r.ReadAvailable(), r.WriteAvailable())
	}
}
