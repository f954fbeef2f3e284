package pool

import "unsafe"

const (
	// DefaultBlockBytes is how much memory one block of slots spans.
	DefaultBlockBytes = 4096

	// Free slots are retained up to this many blocks; beyond that,
	// returned slots are left to the GC.
	maxRetainedBlocks = 16
)

// Pool hands out typed slots carved from fixed-size blocks. Slots come
// back zeroed, so Get always behaves like a fresh allocation without
// paying for one while the free list is warm. Safe for use from any
// goroutine.
type Pool[T any] struct {
	free          chan *T
	slotsPerBlock int
}

// New creates a pool whose blocks span DefaultBlockBytes.
func New[T any]() *Pool[T] {
	return NewSize[T](DefaultBlockBytes)
}

// NewSize creates a pool with a custom block span in bytes. Types
// larger than a block still get one slot per block.
func NewSize[T any](blockBytes int) *Pool[T] {
	if blockBytes <= 0 {
		blockBytes = DefaultBlockBytes
	}
	slotSize := int(unsafe.Sizeof(*new(T)))
	slots := 1
	if slotSize > 0 && blockBytes/slotSize > 1 {
		slots = blockBytes / slotSize
	}
	p := &Pool[T]{
		free:          make(chan *T, slots*maxRetainedBlocks),
		slotsPerBlock: slots,
	}
	p.grow()
	return p
}

// grow carves one block into slots and threads them onto the free
// list. Slots that no longer fit are dropped.
func (p *Pool[T]) grow() {
	block := make([]T, p.slotsPerBlock)
	for i := range block {
		select {
		case p.free <- &block[i]:
		default:
			return
		}
	}
}

// Get returns a zeroed slot, growing the pool by one block when the
// free list is empty. It falls back to a plain allocation if the fresh
// block was consumed by other callers before this one could use it.
func (p *Pool[T]) Get() *T {
	select {
	case v := <-p.free:
		return v
	default:
	}

	p.grow()

	select {
	case v := <-p.free:
		return v
	default:
		return new(T)
	}
}

// Put zeroes a slot and returns it to the free list. Slots the pool
// did not mint are accepted; when the free list is full the slot is
// released to the GC instead.
func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	var zero T
	*v = zero
	select {
	case p.free <- v:
	default:
	}
}

// Available returns the number of free slots currently retained.
func (p *Pool[T]) Available() int {
	return len(p.free)
}

// SlotsPerBlock returns how many slots one block contributes.
func (p *Pool[T]) SlotsPerBlock() int {
	return p.slotsPerBlock
}
