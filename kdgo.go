package kdgo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/kdgo/internal/arena"
)

// node is one tree element. Children are arena references, never pointers.
type node[T Coordinate] struct {
	point Point[T]
	id    uint32
	left  arena.Ref
	right arena.Ref
}

// Index is a static k-d tree over a fixed set of points.
//
// The tree is built once and never modified. Searches keep their traversal
// state in a per-call context, so an Index may be queried concurrently. The
// last-query diagnostics (LastVisited, LastDistances) describe whichever
// Search or Nearest call finished most recently.
type Index[T Coordinate] struct {
	nodes    *arena.Arena[node[T]]
	root     arena.Ref
	dims     int
	reserved atomic.Int64
	opts     options
	closed   atomic.Bool

	mu            sync.Mutex
	lastVisited   int
	lastDistances []float64
}

// New builds an index over points. The points are copied into the index;
// their order is not preserved but each keeps its input position as its ID.
//
// An empty input yields a valid empty index.
func New[T Coordinate](points []Point[T], optFns ...Option) (*Index[T], error) {
	return newIndex(slices.Values(points), len(points), optFns)
}

// NewFromFunc builds an index over n points produced by gen. gen is called
// once per point, in order, and the i-th result receives ID i. Construction
// stops at the first point whose dimension differs from the first one.
func NewFromFunc[T Coordinate](gen func() Point[T], n int, optFns ...Option) (*Index[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("point count must not be negative: %d", n)
	}
	if gen == nil && n > 0 {
		return nil, errors.New("point generator is nil")
	}
	seq := func(yield func(Point[T]) bool) {
		for range n {
			if !yield(gen()) {
				return
			}
		}
	}
	return newIndex(seq, n, optFns)
}

// NewFromSeq builds an index over every point yielded by seq.
func NewFromSeq[T Coordinate](seq iter.Seq[Point[T]], optFns ...Option) (*Index[T], error) {
	return New(slices.Collect(seq), optFns...)
}

func newIndex[T Coordinate](seq iter.Seq[Point[T]], n int, optFns []Option) (*Index[T], error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	ctx := context.Background()
	start := time.Now()

	b := &builder[T]{resources: opts.resources}
	err := b.load(seq, n)
	if err == nil {
		b.build()
	}

	duration := time.Since(start)
	err = translateError(err)
	opts.metricsCollector.RecordBuild(n, duration, err)
	opts.logger.LogBuild(ctx, n, b.dims, duration, err)
	if err != nil {
		return nil, err
	}

	ix := &Index[T]{
		nodes: b.nodes,
		root:  b.root,
		dims:  b.dims,
		opts:  opts,
	}
	ix.reserved.Store(b.reserved)
	return ix, nil
}

// Empty reports whether the index holds no points.
func (ix *Index[T]) Empty() bool {
	return ix.nodes == nil || ix.nodes.Len() == 0
}

// Len returns the number of indexed points.
func (ix *Index[T]) Len() int {
	if ix.nodes == nil {
		return 0
	}
	return ix.nodes.Len()
}

// Dims returns the dimension shared by all indexed points, or 0 when empty.
func (ix *Index[T]) Dims() int { return ix.dims }

// LastVisited returns the number of nodes touched by the most recent
// Search or Nearest call.
func (ix *Index[T]) LastVisited() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.lastVisited
}

// LastDistances returns the ascending squared distances of the candidates
// accepted by the most recent Search or Nearest call.
func (ix *Index[T]) LastDistances() []float64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return slices.Clone(ix.lastDistances)
}

func (ix *Index[T]) recordLast(res *Result[T]) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.lastVisited = res.Visited
	ix.lastDistances = res.Distances()
}
