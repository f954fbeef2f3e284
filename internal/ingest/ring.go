package ingest

// RingBuffer is a contiguous byte ring with one byte reserved to tell
// a full buffer from an empty one. It carries raw feed bytes between
// the producer of a batch and the parser; positions move modulo the
// capacity and wrap at most once per call.
type RingBuffer struct {
	buf      []byte
	readPos  int
	writePos int
}

// DefaultBufferSize is the ring capacity used when none is configured.
const DefaultBufferSize = 1 << 20

// NewRingBuffer allocates a ring of the given capacity in bytes.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 1 {
		capacity = DefaultBufferSize
	}
	return &RingBuffer{buf: make([]byte, capacity)}
}

// Cap returns the ring capacity in bytes.
func (r *RingBuffer) Cap() int {
	return len(r.buf)
}

// WriteAvailable returns how many bytes a Write can currently accept.
func (r *RingBuffer) WriteAvailable() int {
	return len(r.buf) - r.ReadAvailable() - 1
}

// ReadAvailable returns how many bytes a Read can currently yield.
func (r *RingBuffer) ReadAvailable() int {
	if r.readPos <= r.writePos {
		return r.writePos - r.readPos
	}
	return len(r.buf) - (r.readPos - r.writePos)
}

// Write copies up to min(len(data), WriteAvailable()) bytes into the
// ring and returns the count written.
func (r *RingBuffer) Write(data []byte) int {
	n := len(data)
	if avail := r.WriteAvailable(); n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	first := min(n, len(r.buf)-r.writePos)
	copy(r.buf[r.writePos:], data[:first])
	if first < n {
		copy(r.buf, data[first:n])
	}
	r.writePos = (r.writePos + n) % len(r.buf)
	return n
}

// Read copies up to min(len(dst), ReadAvailable()) bytes out of the
// ring and returns the count read.
func (r *RingBuffer) Read(dst []byte) int {
	n := len(dst)
	if avail := r.ReadAvailable(); n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	first := min(n, len(r.buf)-r.readPos)
	copy(dst[:first], r.buf[r.readPos:])
	if first < n {
		copy(dst[first:n], r.buf)
	}
	r.readPos = (r.readPos + n) % len(r.buf)
	return n
}

// Reset rewinds both positions, discarding buffered bytes.
func (r *RingBuffer) Reset() {
	r.readPos = 0
	r.writePos = 0
}
