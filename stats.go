package kdgo

import (
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/kdgo/internal/arena"
)

// Stats describes the shape of an index.
type Stats struct {
	Count           int     // indexed points
	Dims            int     // dimension of every point
	Height          int     // nodes on the longest root-to-leaf path
	Leaves          int     // nodes without children
	MeanLeafDepth   float64 // mean root-to-leaf node count
	StdDevLeafDepth float64 // population standard deviation of leaf depth
	MemoryBytes     int64   // bytes reserved for the node arena
}

// Stats walks the tree and reports its shape.
func (ix *Index[T]) Stats() Stats {
	s := Stats{
		Count:       ix.Len(),
		Dims:        ix.dims,
		MemoryBytes: ix.reserved.Load(),
	}
	if ix.Empty() {
		return s
	}

	type frame struct {
		ref   arena.Ref
		depth int
	}

	var leafDepths []float64
	stack := []frame{{ref: ix.root, depth: 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := ix.nodes.At(f.ref)
		s.Height = max(s.Height, f.depth)
		if !n.left.Valid() && !n.right.Valid() {
			leafDepths = append(leafDepths, float64(f.depth))
			continue
		}
		if n.left.Valid() {
			stack = append(stack, frame{ref: n.left, depth: f.depth + 1})
		}
		if n.right.Valid() {
			stack = append(stack, frame{ref: n.right, depth: f.depth + 1})
		}
	}

	s.Leaves = len(leafDepths)
	s.MeanLeafDepth, s.StdDevLeafDepth = stat.PopMeanStdDev(leafDepths, nil)
	return s
}
