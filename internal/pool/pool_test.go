package pool

import (
	"sync"
	"testing"
)

type report struct {
	OrderID uint64
	Price   int64
	Qty     uint32
}

func TestPoolGetReturnsZeroedSlot(t *testing.T) {
	p := New[report]()

	r := p.Get()
	r.OrderID = 42
	r.Price = 10050
	p.Put(r)

	r2 := p.Get()
	if r2.OrderID != 0 || r2.Price != 0 || r2.Qty != 0 {
		t.Fatalf("recycled slot not zeroed: got %+v", *r2)
	}
}

func TestPoolSlotSizing(t *testing.T) {
	p := NewSize[report](4096)
	if p.SlotsPerBlock() < 2 {
		t.Fatalf("slots per block mismatch: got %d want >= 2", p.SlotsPerBlock())
	}

	big := NewSize[[8192]byte](4096)
	if big.SlotsPerBlock() != 1 {
		t.Fatalf("oversized type slots mismatch: got %d want 1", big.SlotsPerBlock())
	}
}

func TestPoolNoAliasing(t *testing.T) {
	p := New[report]()

	live := make(map[*report]bool)
	for i := 0; i < 10000; i++ {
		r := p.Get()
		if live[r] {
			t.Fatalf("Get returned a live pointer at iteration %d", i)
		}
		live[r] = true

		// Return roughly half, keep the rest live.
		if i%2 == 0 {
			delete(live, r)
			p.Put(r)
		}
	}
}

func TestPoolAcceptsForeignSlot(t *testing.T) {
	p := New[report]()
	foreign := &report{OrderID: 9}
	p.Put(foreign)
	if foreign.OrderID != 0 {
		t.Fatalf("foreign slot not zeroed on Put")
	}
}

func TestPoolConcurrentStress(t *testing.T) {
	p := New[report]()

	const workers = 8
	const cycles = 5000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			held := make([]*report, 0, 16)
			for i := 0; i < cycles; i++ {
				r := p.Get()
				r.OrderID = seed
				held = append(held, r)
				if len(held) == cap(held) {
					for _, h := range held {
						if h.OrderID != seed {
							t.Errorf("slot aliased across goroutines: got %d want %d", h.OrderID, seed)
							return
						}
						p.Put(h)
					}
					held = held[:0]
				}
			}
			for _, h := range held {
				p.Put(h)
			}
		}(uint64(w + 1))
	}
	wg.Wait()
}

func BenchmarkPoolGetPut(b *testing.B) {
	p := New[report]()
	for b.Loop() {
		r := p.Get()
		p.Put(r)
	}
}

func BenchmarkPoolVsNew(b *testing.B) {
	for b.Loop() {
		r := new(report)
		r.OrderID = 1
		_ = r
	}
}
