// Package handles maps opaque numeric handles to live values for the C ABI.
// Handles are never zero and never dangle silently: each slot carries a
// generation that is bumped on free, so a stale handle fails validation
// instead of reaching a recycled value.
package handles

import "sync"

// Handle identifies a value in a Table. The zero Handle is always invalid.
// Layout: high 32 bits generation, low 32 bits slot index plus one.
type Handle uint64

func compose(idx, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(idx+1))
}

func (h Handle) split() (idx, gen uint32, ok bool) {
	low := uint32(h)
	if low == 0 {
		return 0, 0, false
	}
	return low - 1, uint32(h >> 32), true
}

type slot[T any] struct {
	val  T
	gen  uint32
	live bool
}

// Table is a growable arena of values addressed by Handle. All methods are
// safe for concurrent use.
type Table[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
	free  []uint32
}

// NewTable returns an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{}
}

// Put stores v and returns its handle.
func (t *Table[T]) Put(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		s := &t.slots[idx]
		s.val = v
		s.live = true
		return compose(idx, s.gen)
	}
	t.slots = append(t.slots, slot[T]{val: v, gen: 1, live: true})
	return compose(uint32(len(t.slots)-1), 1)
}

// Get returns the value for h, or the zero value and false when h is zero,
// stale or was never issued.
func (t *Table[T]) Get(h Handle) (T, bool) {
	var zero T
	idx, gen, ok := h.split()
	if !ok {
		return zero, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(idx) >= len(t.slots) {
		return zero, false
	}
	s := &t.slots[idx]
	if !s.live || s.gen != gen {
		return zero, false
	}
	return s.val, true
}

// Remove frees the slot for h and returns the value it held. Removing a
// zero or stale handle is a no-op reported by ok=false.
func (t *Table[T]) Remove(h Handle) (T, bool) {
	var zero T
	idx, gen, ok := h.split()
	if !ok {
		return zero, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(idx) >= len(t.slots) {
		return zero, false
	}
	s := &t.slots[idx]
	if !s.live || s.gen != gen {
		return zero, false
	}
	v := s.val
	s.val = zero
	s.live = false
	s.gen++ // outstanding copies of h are now stale
	t.free = append(t.free, idx)
	return v, true
}

// Len reports the number of live values.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots) - len(t.free)
}
