// Package arena provides a fixed-capacity, index-addressed element arena.
//
// The arena is sized once at creation and never grows, so a Ref handed out by
// Alloc stays valid for the arena's whole lifetime. Elements are addressed by
// position rather than by pointer; links between elements (for example tree
// children) are stored as Refs.
//
// # Usage
//
//	a := arena.New[node](n)
//	ref, err := a.Alloc(node{...})
//	a.At(ref).left = otherRef
//
// An arena is not safe for concurrent mutation. Once fully populated it may be
// read by any number of goroutines.
package arena
