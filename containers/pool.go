package containers

import (
	"fmt"

	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
)

// maxPoolCapacity bounds the slot index to what a 16-bit handle index can
// address.
const maxPoolCapacity = 0xFFFF

const emptyIndex = 0xFFFF

// slot is the per-element header. When the slot is occupied, index holds
// its own position; when free, next links the intrusive free list. The C
// ancestor of this pool threads the free list through the element storage
// itself; Go cannot reinterpret a T's memory as an index, so the link
// lives here instead. Same O(1) behavior, no separate free-list array.
type slot struct {
	index      uint16
	next       uint16
	generation uint16
}

func (s *slot) occupied() bool {
	return s.index != emptyIndex
}

// Pool is a fixed-capacity generational slot allocator. Insert hands out
// stable 32-bit handles; each slot carries a generation that is advanced
// on removal, so stale handles are detected instead of aliasing a later
// occupant of the same slot. The pool exclusively owns element storage:
// handles are weak references and never keep an element alive.
//
// Pools are not safe for concurrent mutation; callers serialize access
// (the device backend is single-thread affine anyway).
type Pool[T any] struct {
	data     []T
	slots    []slot
	freeHead uint16
	count    int

	// onRemove runs on the element before its slot is recycled, so a
	// pooled resource can release its backend object exactly once.
	onRemove func(*T)
}

// NewPool creates a pool with a fixed capacity in (0, 0xFFFF). The
// capacity is never resized afterwards.
func NewPool[T any](capacity int) (*Pool[T], error) {
	if capacity <= 0 || capacity >= maxPoolCapacity {
		err := fmt.Errorf("pool capacity must be in (0, %d), got %d", maxPoolCapacity, capacity)
		core.LogError(err.Error())
		return nil, err
	}

	p := &Pool[T]{
		data:  make([]T, capacity),
		slots: make([]slot, capacity),
	}
	for i := range p.slots {
		// Generations start at 1 so the zero handle never validates
		// against a freshly allocated slot 0.
		p.slots[i] = slot{index: emptyIndex, next: uint16(i + 1), generation: 1}
	}
	return p, nil
}

// SetOnRemove installs the hook invoked on an element just before its slot
// is recycled by Remove.
func (p *Pool[T]) SetOnRemove(fn func(*T)) {
	p.onRemove = fn
}

// Insert moves v into a free slot and returns its handle. When the pool is
// exhausted it logs at error severity and returns core.ErrPoolExhausted;
// capacities are meant to be sized generously at init, so with a panic
// handler installed this is fatal.
func (p *Pool[T]) Insert(v T) (metadata.Handle, error) {
	if p.count == len(p.slots) {
		core.LogError("pool exhausted (capacity %d); adjust configuration to allow more", len(p.slots))
		return metadata.NilHandle, core.ErrPoolExhausted
	}

	idx := p.freeHead
	s := &p.slots[idx]
	p.freeHead = s.next
	s.index = idx
	p.data[idx] = v
	p.count++
	return metadata.MakeHandle(idx, s.generation), nil
}

// Get returns the element for a handle in O(1), or false if the handle is
// nil, out of range, or stale. It never allocates.
func (p *Pool[T]) Get(h metadata.Handle) (*T, bool) {
	if !p.Contains(h) {
		return nil, false
	}
	return &p.data[h.Index()], true
}

// Contains reports whether the handle refers to a live element.
func (p *Pool[T]) Contains(h metadata.Handle) bool {
	idx := int(h.Index())
	if h.IsNil() || idx >= len(p.slots) {
		return false
	}
	s := &p.slots[idx]
	return s.occupied() && s.generation == h.Generation()
}

// Remove destroys the element in place and recycles its slot, advancing
// the generation so the handle (and any copy of it) becomes permanently
// invalid. Removing an already-invalid handle is a no-op returning false.
func (p *Pool[T]) Remove(h metadata.Handle) bool {
	if !p.Contains(h) {
		return false
	}
	idx := h.Index()
	s := &p.slots[idx]

	if p.onRemove != nil {
		p.onRemove(&p.data[idx])
	}

	var zero T
	p.data[idx] = zero
	s.generation++
	if s.generation == 0 {
		// Skip 0 on wrap so a recycled slot 0 can never combine to the
		// nil handle.
		s.generation = 1
	}
	s.index = emptyIndex
	s.next = p.freeHead
	p.freeHead = idx
	p.count--
	return true
}

// Each calls fn for every live element. The element must not be removed
// from inside fn.
func (p *Pool[T]) Each(fn func(h metadata.Handle, v *T)) {
	for i := range p.slots {
		s := &p.slots[i]
		if s.occupied() {
			fn(metadata.MakeHandle(uint16(i), s.generation), &p.data[i])
		}
	}
}

// Handles returns the handles of all live elements.
func (p *Pool[T]) Handles() []metadata.Handle {
	out := make([]metadata.Handle, 0, p.count)
	p.Each(func(h metadata.Handle, _ *T) {
		out = append(out, h)
	})
	return out
}

// Capacity returns the fixed capacity.
func (p *Pool[T]) Capacity() int {
	return len(p.slots)
}

// Len returns the number of live elements.
func (p *Pool[T]) Len() int {
	return p.count
}
