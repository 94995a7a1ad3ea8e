// Package resource implements a Controller that governs what an index may
// consume.
//
// The Controller manages three resources:
//
//   - Memory: node arena reservations against a hard budget (non-blocking, fail-fast)
//   - Query slots: a cap on concurrently executing queries
//   - Query rate: a token bucket limiting queries per second
//
// A nil *Controller is valid and imposes no limits.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:     64 << 20,
//	    MaxConcurrentQueries: 8,
//	})
//	idx, err := kdgo.New(points, kdgo.WithResourceController(rc))
package resource
