package arena

import (
	"errors"
	"fmt"
	"math"
)

// Ref addresses an element by its position in the arena.
type Ref int32

// Nil is the Ref of no element.
const Nil Ref = -1

// MaxCapacity is the largest number of elements an arena can address.
const MaxCapacity = math.MaxInt32

var (
	// ErrArenaFull is returned when an allocation would exceed the arena capacity.
	ErrArenaFull = errors.New("arena: arena is full")
	// ErrCapacityTooLarge is returned when the requested capacity cannot be addressed by a Ref.
	ErrCapacityTooLarge = errors.New("arena: capacity too large")
)

// Valid reports whether r refers to an element.
func (r Ref) Valid() bool { return r >= 0 }

// Arena is a contiguous block of elements with a fixed capacity.
type Arena[E any] struct {
	items []E
}

// New creates an arena able to hold exactly capacity elements.
func New[E any](capacity int) (*Arena[E], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("arena: negative capacity %d", capacity)
	}
	if capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrCapacityTooLarge, capacity)
	}
	return &Arena[E]{items: make([]E, 0, capacity)}, nil
}

// Alloc appends e and returns its Ref.
// The backing storage is never reallocated.
func (a *Arena[E]) Alloc(e E) (Ref, error) {
	if len(a.items) == cap(a.items) {
		return Nil, ErrArenaFull
	}
	a.items = append(a.items, e)
	return Ref(len(a.items) - 1), nil
}

// At returns a pointer to the element at r.
// It panics if r is out of range, like a slice index.
func (a *Arena[E]) At(r Ref) *E {
	return &a.items[r]
}

// Items returns the allocated elements in allocation order.
// The slice aliases the arena; callers may reorder it but must not append.
func (a *Arena[E]) Items() []E {
	return a.items[:len(a.items):len(a.items)]
}

// Len returns the number of allocated elements.
func (a *Arena[E]) Len() int { return len(a.items) }

// Cap returns the fixed capacity.
func (a *Arena[E]) Cap() int { return cap(a.items) }

// Full reports whether every slot has been allocated.
func (a *Arena[E]) Full() bool { return len(a.items) == cap(a.items) }
