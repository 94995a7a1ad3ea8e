package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// SearchResult represents a search result.
type SearchResult struct {
	ID       uint32
	Distance float64 // squared Euclidean distance
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates num points with coordinates in [lo, hi).
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num, dims int, lo, hi float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dims)
	points := make([][]float64, num)
	span := hi - lo

	for i := range num {
		p := data[i*dims : (i+1)*dims]
		for j := range p {
			p[j] = lo + r.rand.Float64()*span
		}
		points[i] = p
	}

	return points
}

// UniformPoint generates a single point with coordinates in [lo, hi).
func (r *RNG) UniformPoint(dims int, lo, hi float64) []float64 {
	return r.UniformPoints(1, dims, lo, hi)[0]
}

// GaussianPoints generates points with coordinates from a standard normal distribution.
func (r *RNG) GaussianPoints(num, dims int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dims)
	points := make([][]float64, num)

	for i := range num {
		p := data[i*dims : (i+1)*dims]
		for j := range p {
			p[j] = r.rand.NormFloat64()
		}
		points[i] = p
	}

	return points
}

// SpherePoints generates 3-D points uniformly distributed on the unit sphere.
// The polar angle is drawn through a uniform cosine so points do not bunch at
// the poles.
func (r *RNG) SpherePoints(num int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	const eps = 1.0e-6

	data := make([]float64, num*3)
	points := make([][]float64, num)

	for i := range num {
		u := eps + r.rand.Float64()*(1-2*eps)
		theta := math.Acos(2*u - 1)
		phi := 2 * math.Pi * r.rand.Float64()

		p := data[i*3 : (i+1)*3]
		p[0] = math.Sin(theta) * math.Cos(phi)
		p[1] = math.Sin(theta) * math.Sin(phi)
		p[2] = math.Cos(theta)
		points[i] = p
	}

	return points
}

// ClusteredPoints generates points scattered around random centroids in
// [-1, 1)^dims. Useful for testing pruning on non-uniform data.
func (r *RNG) ClusteredPoints(num, dims, clusters int, spread float64) [][]float64 {
	centroids := r.UniformPoints(clusters, dims, -1, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dims)
	points := make([][]float64, num)

	for i := range num {
		centroid := centroids[i%clusters]
		p := data[i*dims : (i+1)*dims]
		for j := range dims {
			p[j] = centroid[j] + r.rand.NormFloat64()*spread
		}
		points[i] = p
	}

	return points
}

// SquaredDistance returns the squared Euclidean distance between a and b.
func SquaredDistance(a, b []float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

// BruteForceSearch performs exact search for ground truth.
// Ties are ordered by ID.
func BruteForceSearch(points [][]float64, query []float64, k int) []SearchResult {
	results := make([]SearchResult, len(points))
	for i, p := range points {
		results[i] = SearchResult{ID: uint32(i), Distance: SquaredDistance(query, p)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// ComputeRecall computes recall@k by comparing approximate results against ground truth.
func ComputeRecall(groundTruth, approximate []SearchResult) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[uint32]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i].ID] = struct{}{}
	}

	hits := 0
	for _, r := range approximate {
		if _, ok := truthSet[r.ID]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}
