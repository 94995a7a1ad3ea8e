package kdgo

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kdgo/internal/arena"
	"github.com/hupe1980/kdgo/internal/searcher"
)

// Neighbor is one accepted candidate of a query.
type Neighbor[T Coordinate] struct {
	// ID is the position of the point in the construction input.
	ID uint32

	// Point is the indexed point.
	Point Point[T]

	// SquaredDistance is the squared Euclidean distance to the query.
	SquaredDistance float64
}

// Distance returns the Euclidean distance to the query.
func (n Neighbor[T]) Distance() float64 {
	return math.Sqrt(n.SquaredDistance)
}

// Result holds the outcome of a k-NN query.
type Result[T Coordinate] struct {
	// Neighbors are the accepted candidates, nearest first.
	Neighbors []Neighbor[T]

	// Visited is the number of tree nodes the query touched.
	Visited int
}

// Best returns the nearest candidate.
func (r *Result[T]) Best() (Neighbor[T], bool) {
	if len(r.Neighbors) == 0 {
		return Neighbor[T]{}, false
	}
	return r.Neighbors[0], true
}

// Second returns the second-nearest candidate.
func (r *Result[T]) Second() (Neighbor[T], bool) {
	if len(r.Neighbors) < 2 {
		return Neighbor[T]{}, false
	}
	return r.Neighbors[1], true
}

// Distance returns the Euclidean distance to the farthest accepted candidate,
// or 0 when nothing was accepted.
func (r *Result[T]) Distance() float64 {
	if len(r.Neighbors) == 0 {
		return 0
	}
	return r.Neighbors[len(r.Neighbors)-1].Distance()
}

// Distances returns the squared distances of the candidates, ascending.
func (r *Result[T]) Distances() []float64 {
	out := make([]float64, len(r.Neighbors))
	for i, n := range r.Neighbors {
		out[i] = n.SquaredDistance
	}
	return out
}

// Nearest finds the k nearest points to query. It returns the nearest point,
// the second-nearest point (the zero Point when fewer than two candidates were
// accepted) and the Euclidean distance to the farthest accepted candidate.
func (ix *Index[T]) Nearest(query Point[T], k int) (best, second Point[T], dist float64, err error) {
	res, err := ix.Search(context.Background(), query, k)
	if err != nil {
		return best, second, 0, err
	}
	if n, ok := res.Best(); ok {
		best = n.Point
	}
	if n, ok := res.Second(); ok {
		second = n.Point
	}
	return best, second, res.Distance(), nil
}

// Search finds the k nearest points to query using branch-and-bound descent.
// The result also updates LastVisited and LastDistances.
func (ix *Index[T]) Search(ctx context.Context, query Point[T], k int, optFns ...SearchOption) (*Result[T], error) {
	start := time.Now()
	res, err := ix.search(ctx, query, k, optFns)
	duration := time.Since(start)

	visited, found := 0, 0
	if res != nil {
		visited, found = res.Visited, len(res.Neighbors)
		ix.recordLast(res)
	}
	ix.opts.metricsCollector.RecordSearch(k, visited, duration, err)
	ix.opts.logger.LogSearch(ctx, k, found, visited, err)
	return res, err
}

// BatchSearch runs one k-NN query per element of queries concurrently and
// returns the results in query order. It fails with the first query error.
// Batch queries do not update LastVisited or LastDistances.
func (ix *Index[T]) BatchSearch(ctx context.Context, queries []Point[T], k int, optFns ...SearchOption) ([]*Result[T], error) {
	start := time.Now()
	results := make([]*Result[T], len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.batchConcurrency)

	for i, q := range queries {
		g.Go(func() error {
			res, err := ix.search(gctx, q, k, optFns)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	ix.opts.metricsCollector.RecordBatchSearch(len(queries), time.Since(start), err)
	ix.opts.logger.LogBatchSearch(ctx, len(queries), k, err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (ix *Index[T]) search(ctx context.Context, query Point[T], k int, optFns []SearchOption) (*Result[T], error) {
	if ix.closed.Load() {
		return nil, ErrClosed
	}
	if ix.Empty() {
		return nil, ErrEmptyIndex
	}
	if k < 1 {
		return nil, ErrInvalidK
	}
	if query.Dims() != ix.dims {
		return nil, &ErrDimensionMismatch{Expected: ix.dims, Actual: query.Dims()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := ix.opts.resources.AcquireQuery(ctx); err != nil {
		return nil, err
	}
	defer ix.opts.resources.ReleaseQuery()

	var so searchOptions
	for _, fn := range optFns {
		fn(&so)
	}

	s := searcher.Get()
	defer searcher.Put(s)

	// The cache can never hold more than Len entries.
	if err := s.Reset(min(k, ix.Len())); err != nil {
		return nil, translateError(err)
	}

	t := traversal[T]{
		nodes:  ix.nodes,
		dims:   ix.dims,
		query:  query,
		s:      s,
		accept: so.filter,
	}
	t.visit(ix.root, 0)

	entries := s.Results()
	res := &Result[T]{
		Neighbors: make([]Neighbor[T], len(entries)),
		Visited:   s.Visited,
	}
	for i, e := range entries {
		n := ix.nodes.At(arena.Ref(e.Ref))
		res.Neighbors[i] = Neighbor[T]{ID: n.id, Point: n.point, SquaredDistance: e.Distance}
	}
	return res, nil
}

// traversal is the depth-first branch-and-bound walk of one query.
type traversal[T Coordinate] struct {
	nodes  *arena.Arena[node[T]]
	dims   int
	query  Point[T]
	s      *searcher.Searcher
	accept func(id uint32) bool
}

func (t *traversal[T]) visit(ref arena.Ref, axis int) {
	if ref == arena.Nil {
		return
	}
	n := t.nodes.At(ref)
	t.s.Visited++

	if t.accept == nil || t.accept(n.id) {
		t.s.Cache.Insert(n.point.squaredDistance(t.query), int32(ref))
	}

	delta := n.point.axisDelta(t.query, axis)
	next := axis + 1
	if next == t.dims {
		next = 0
	}

	near, far := n.right, n.left
	if delta > 0 {
		near, far = n.left, n.right
	}

	t.visit(near, next)

	// The far half-space lies at least |delta| away along this axis.
	if delta*delta >= t.s.Cache.Threshold() {
		return
	}
	t.visit(far, next)
}
