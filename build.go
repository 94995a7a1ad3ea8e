package kdgo

import (
	"fmt"
	"iter"
	"math"
	"unsafe"

	"github.com/hupe1980/kdgo/internal/arena"
	"github.com/hupe1980/kdgo/internal/partition"
	"github.com/hupe1980/kdgo/resource"
)

var errArenaTooLarge = fmt.Errorf("%w: arena size overflows int64", ErrResourceExhausted)

// builder exclusively owns the node arena until the tree is linked.
type builder[T Coordinate] struct {
	resources *resource.Controller
	nodes     *arena.Arena[node[T]]
	root      arena.Ref
	dims      int
	reserved  int64
}

// arenaBytes estimates the memory held by n nodes of the given dimension.
// It fails when the estimate does not fit in an int64.
func arenaBytes[T Coordinate](n, dims int) (int64, error) {
	var (
		nd node[T]
		c  T
	)
	nodeSize, coordSize := int64(unsafe.Sizeof(nd)), int64(unsafe.Sizeof(c))
	if n < 0 || dims < 0 || int64(dims) > (math.MaxInt64-nodeSize)/coordSize {
		return 0, errArenaTooLarge
	}
	per := nodeSize + int64(dims)*coordSize
	if int64(n) > math.MaxInt64/per {
		return 0, errArenaTooLarge
	}
	return int64(n) * per, nil
}

// load copies the points into a freshly reserved arena. On error nothing is
// retained and any reservation is released.
func (b *builder[T]) load(seq iter.Seq[Point[T]], n int) (err error) {
	b.root = arena.Nil
	if n > arena.MaxCapacity {
		return arena.ErrCapacityTooLarge
	}

	defer func() {
		if err != nil {
			b.resources.ReleaseMemory(b.reserved)
			b.reserved = 0
			b.nodes = nil
		}
	}()

	if n == 0 {
		b.nodes, err = arena.New[node[T]](0)
		return err
	}

	for p := range seq {
		if b.nodes == nil {
			if err := b.reserve(n, p.Dims()); err != nil {
				return err
			}
		}
		if p.Dims() != b.dims {
			return &ErrDimensionMismatch{Expected: b.dims, Actual: p.Dims()}
		}
		id := uint32(b.nodes.Len())
		if _, err := b.nodes.Alloc(node[T]{point: p, id: id, left: arena.Nil, right: arena.Nil}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder[T]) reserve(n, dims int) error {
	if dims < 1 {
		return &ErrInvalidDimension{Dimension: dims}
	}
	bytes, err := arenaBytes[T](n, dims)
	if err != nil {
		return err
	}
	if err := b.resources.AcquireMemory(bytes); err != nil {
		return err
	}
	b.reserved = bytes

	nodes, err := arena.New[node[T]](n)
	if err != nil {
		return err
	}
	b.nodes = nodes
	b.dims = dims
	return nil
}

func (b *builder[T]) build() {
	b.root = b.buildRange(0, b.nodes.Len(), 0)
}

// buildRange turns nodes[begin:end) into a subtree split on axis and returns
// its root. The median along axis becomes the root; children split on the
// next axis.
func (b *builder[T]) buildRange(begin, end, axis int) arena.Ref {
	if end <= begin {
		return arena.Nil
	}
	mid := begin + (end-begin)/2

	partition.Select(b.nodes.Items()[begin:end], mid-begin, func(x, y node[T]) bool {
		return x.point.coords[axis] < y.point.coords[axis]
	})

	next := (axis + 1) % b.dims
	left := b.buildRange(begin, mid, next)
	right := b.buildRange(mid+1, end, next)

	n := b.nodes.At(arena.Ref(mid))
	n.left = left
	n.right = right
	return arena.Ref(mid)
}
