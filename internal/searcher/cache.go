package searcher

import (
	"errors"
	"math"
	"slices"
)

var (
	// ErrInvalidCapacity is returned when a cache capacity below one is requested.
	ErrInvalidCapacity = errors.New("searcher: capacity must be at least 1")
	// ErrEmptyCache is returned when best or worst is read from an empty cache.
	ErrEmptyCache = errors.New("searcher: cache is empty")
)

// Entry is a candidate held by a BoundedCache.
type Entry struct {
	Distance float64 // squared distance to the query
	Ref      int32   // node reference
	seq      uint64  // insertion order, breaks distance ties
}

// worse reports whether a ranks behind b. Among equal distances the later
// insertion is worse.
func worse(a, b Entry) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.seq > b.seq
}

func compareAscending(a, b Entry) int {
	switch {
	case worse(b, a):
		return -1
	case worse(a, b):
		return 1
	default:
		return 0
	}
}

// BoundedCache retains at most Cap entries keyed by distance, evicting the
// worst entry when an insertion overflows it.
//
// Entries are kept in a max-heap so the worst entry is always at the top.
type BoundedCache struct {
	entries  []Entry
	capacity int
	seq      uint64
}

// NewBoundedCache creates a cache holding at most capacity entries.
func NewBoundedCache(capacity int) (*BoundedCache, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return newBoundedCache(capacity), nil
}

// newBoundedCache requires capacity >= 1.
func newBoundedCache(capacity int) *BoundedCache {
	return &BoundedCache{
		entries:  make([]Entry, 0, capacity+1),
		capacity: capacity,
	}
}

// SetCapacity changes the bound. Shrinking below the current size evicts the
// worst entries.
func (c *BoundedCache) SetCapacity(n int) error {
	if n < 1 {
		return ErrInvalidCapacity
	}
	c.capacity = n
	c.entries = slices.Grow(c.entries, n+1)
	for len(c.entries) > c.capacity {
		c.pop()
	}
	return nil
}

// Clear removes all entries. The capacity is unchanged.
func (c *BoundedCache) Clear() {
	c.entries = c.entries[:0]
	c.seq = 0
}

// Insert stores the pair and then evicts the worst entry if the cache
// overflows. The evicted entry may be the one just inserted.
func (c *BoundedCache) Insert(distance float64, ref int32) {
	c.entries = append(c.entries, Entry{Distance: distance, Ref: ref, seq: c.seq})
	c.seq++
	c.up(len(c.entries) - 1)
	if len(c.entries) > c.capacity {
		c.pop()
	}
}

// Len returns the number of entries held.
func (c *BoundedCache) Len() int { return len(c.entries) }

// Cap returns the capacity.
func (c *BoundedCache) Cap() int { return c.capacity }

// Full reports whether the cache holds Cap entries.
func (c *BoundedCache) Full() bool { return len(c.entries) >= c.capacity }

// Worst returns the entry with the largest distance.
func (c *BoundedCache) Worst() (Entry, error) {
	if len(c.entries) == 0 {
		return Entry{}, ErrEmptyCache
	}
	return c.entries[0], nil
}

// WorstDistance returns the largest distance held.
func (c *BoundedCache) WorstDistance() (float64, error) {
	e, err := c.Worst()
	return e.Distance, err
}

// Best returns the entry with the smallest distance.
// It scans the heap, which is fine for the small capacities used by k-NN.
func (c *BoundedCache) Best() (Entry, error) {
	if len(c.entries) == 0 {
		return Entry{}, ErrEmptyCache
	}
	best := c.entries[0]
	for _, e := range c.entries[1:] {
		if worse(best, e) {
			best = e
		}
	}
	return best, nil
}

// BestDistance returns the smallest distance held.
func (c *BoundedCache) BestDistance() (float64, error) {
	e, err := c.Best()
	return e.Distance, err
}

// Threshold returns the pruning bound: +Inf until the cache is full, then
// the worst distance held. A subtree whose squared plane distance is at least
// Threshold cannot improve the result.
func (c *BoundedCache) Threshold() float64 {
	if len(c.entries) < c.capacity {
		return math.Inf(1)
	}
	return c.entries[0].Distance
}

// Ascending returns a copy of the entries ordered nearest first.
func (c *BoundedCache) Ascending() []Entry {
	return c.AppendAscending(make([]Entry, 0, len(c.entries)))
}

// AppendAscending appends the entries ordered nearest first to dst.
func (c *BoundedCache) AppendAscending(dst []Entry) []Entry {
	start := len(dst)
	dst = append(dst, c.entries...)
	slices.SortFunc(dst[start:], compareAscending)
	return dst
}

func (c *BoundedCache) pop() {
	n := len(c.entries) - 1
	c.entries[0] = c.entries[n]
	c.entries = c.entries[:n]
	if n > 0 {
		c.down(0)
	}
}

func (c *BoundedCache) up(j int) {
	item := c.entries[j]
	for j > 0 {
		i := (j - 1) / 2
		if !worse(item, c.entries[i]) {
			break
		}
		c.entries[j] = c.entries[i]
		j = i
	}
	c.entries[j] = item
}

func (c *BoundedCache) down(i int) {
	n := len(c.entries)
	item := c.entries[i]
	for {
		l := 2*i + 1
		if l >= n {
			break
		}
		w := l
		if r := l + 1; r < n && worse(c.entries[r], c.entries[l]) {
			w = r
		}
		if !worse(c.entries[w], item) {
			break
		}
		c.entries[i] = c.entries[w]
		i = w
	}
	c.entries[i] = item
}
