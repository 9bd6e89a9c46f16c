// Package pool provides a fixed-capacity, arena-backed free-list allocator.
//
// It pre-reserves a bounded number of slots for one element type up front and
// hands out stable, index-based handles. There is no allocation after
// construction: Alloc reuses a freed slot or, if every slot has ever been
// touched, fails with ErrExhausted. Refs stay valid until Free or until the
// Pool itself is dropped -- a freed slot is only reused once the caller gives
// it back, so a live Ref is never aliased.
package pool

import "errors"

// ErrExhausted is returned by Alloc when every slot is in use.
var ErrExhausted = errors.New("pool: exhausted")

// ErrDoubleFree is returned by FreeChecked when the slot is already on the
// free list. Free itself ignores a double free.
var ErrDoubleFree = errors.New("pool: double free")

// Ref is a stable, index-based handle into a Pool. The zero Ref names the
// first slot and is a valid handle; NullRef is the canonical invalid value.
type Ref int32

// NullRef is the sentinel for "no slot".
const NullRef Ref = -1

type slot[T any] struct {
	value T
	next  Ref
	free  bool
}

// Pool is a generic fixed-pool allocator for element type T. One Pool is
// single-writer: callers provide their own exclusion if they share it across
// goroutines.
type Pool[T any] struct {
	slots    []slot[T]
	freeHead Ref
	live     int
}

// New reserves capacity slots for T. No further allocation happens after
// this call.
func New[T any](capacity int) *Pool[T] {
	p := &Pool[T]{
		slots:    make([]slot[T], capacity),
		freeHead: 0,
	}
	for i := range p.slots {
		p.slots[i].free = true
		if i == len(p.slots)-1 {
			p.slots[i].next = NullRef
		} else {
			p.slots[i].next = Ref(i + 1)
		}
	}
	if capacity == 0 {
		p.freeHead = NullRef
	}
	return p
}

// Cap returns the total number of slots the pool was constructed with.
func (p *Pool[T]) Cap() int { return len(p.slots) }

// Len returns the number of slots currently handed out.
func (p *Pool[T]) Len() int { return p.live }

// Alloc reserves a slot, initializes it to init, and returns a stable Ref.
func (p *Pool[T]) Alloc(init T) (Ref, error) {
	if p.freeHead == NullRef {
		return NullRef, ErrExhausted
	}
	ref := p.freeHead
	s := &p.slots[ref]
	p.freeHead = s.next
	s.value = init
	s.free = false
	s.next = NullRef
	p.live++
	return ref, nil
}

// Get returns a pointer to the slot's value. The pointer is stable for the
// slot's live lifetime; it is invalidated the moment Free is called.
func (p *Pool[T]) Get(ref Ref) *T {
	return &p.slots[ref].value
}

// Free returns ref's slot to the free list. Freeing an already-free slot is
// a silent no-op in this (release) build; use FreeChecked to detect it.
func (p *Pool[T]) Free(ref Ref) {
	s := &p.slots[ref]
	if s.free {
		return
	}
	var zero T
	s.value = zero
	s.free = true
	s.next = p.freeHead
	p.freeHead = ref
	p.live--
}

// FreeChecked behaves like Free but reports ErrDoubleFree instead of
// silently ignoring a slot that is already on the free list. Callers on a
// hot path should prefer Free; this is for debug builds and tests.
func (p *Pool[T]) FreeChecked(ref Ref) error {
	if p.slots[ref].free {
		return ErrDoubleFree
	}
	p.Free(ref)
	return nil
}
