// Package testutil provides testing utilities for kdgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random points and computing exact
// nearest neighbors.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(1000, 3, 0, 1) // uniform in [0, 1)^3
//	pts := rng.SpherePoints(1000)           // uniform on the unit sphere
//
// # Exact Search (Ground Truth)
//
//	results := testutil.BruteForceSearch(pts, query, k)
package testutil
