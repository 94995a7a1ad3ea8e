// Package kdgo provides a static, in-memory k-d tree for exact k-nearest-neighbor
// search over n-dimensional points.
//
// # Quick Start
//
//	points := []kdgo.Point[float64]{
//	    kdgo.NewPoint(2.0, 3.0), kdgo.NewPoint(5.0, 4.0), kdgo.NewPoint(9.0, 6.0),
//	}
//	idx, _ := kdgo.New(points)
//	best, second, dist, _ := idx.Nearest(kdgo.NewPoint(9.0, 2.0), 2)
//
// # Construction
//
// The tree is built once by recursive median partitioning, cycling the split
// axis at each level. Points may come from a slice (New), a generator called
// exactly n times (NewFromFunc) or an iterator (NewFromSeq). Nodes live in a
// fixed-size arena and link to their children by position.
//
// # Search
//
// Search descends toward the query's half-space first and skips the far side
// of a split whenever the squared distance to the splitting plane is at least
// the current k-th best squared distance. All comparisons use squared
// distances; only reported distances are square-rooted.
//
//	res, _ := idx.Search(ctx, query, 10)
//	for _, n := range res.Neighbors {
//	    fmt.Println(n.ID, n.Point, n.Distance())
//	}
//
// Results can be restricted to a subset of points:
//
//	allowed := roaring.BitmapOf(1, 5, 9)
//	res, _ := idx.Search(ctx, query, 3, kdgo.WithAllowList(allowed))
//
// # Concurrency
//
// Traversal state (candidate cache, visit counter) is taken from a pool per
// call, so any number of goroutines may query one Index. BatchSearch fans a
// slice of queries out over a bounded errgroup. LastVisited and LastDistances
// report the most recent Search or Nearest call and are mutex-guarded.
//
// # Resource Limits
//
// A resource.Controller passed with WithResourceController reserves the node
// arena against a memory budget (construction fails with ErrResourceExhausted
// when it does not fit) and applies query rate and concurrency limits.
package kdgo
