// Package partition provides in-place selection over slices.
//
// Select rearranges a slice so that the element at a given position is the one
// that would be there if the slice were sorted, with no greater element before
// it and no smaller element after it. The remaining elements are left in an
// unspecified order. Expected running time is linear in the slice length.
package partition
