package searcher

import "sync"

// Searcher is a reusable execution context for one k-NN query.
//
// Searcher is NOT thread-safe. It is intended to be owned by a single goroutine
// during a search operation.
type Searcher struct {
	// Cache holds the best candidates found so far.
	Cache *BoundedCache

	// Visited counts the nodes touched by the current query.
	Visited int

	// Scratch is a reusable buffer for enumerating Cache in ascending order.
	Scratch []Entry
}

var searcherPool = sync.Pool{
	New: func() any {
		return NewSearcher(16)
	},
}

// NewSearcher creates a searcher whose cache starts with capacity k.
// k values below one are raised to one.
func NewSearcher(k int) *Searcher {
	k = max(k, 1)
	return &Searcher{
		Cache:   newBoundedCache(k),
		Scratch: make([]Entry, 0, k),
	}
}

// Get returns a Searcher from the pool.
func Get() *Searcher {
	return searcherPool.Get().(*Searcher)
}

// Put returns a Searcher to the pool.
func Put(s *Searcher) {
	searcherPool.Put(s)
}

// Reset prepares the searcher for a query returning k candidates.
func (s *Searcher) Reset(k int) error {
	if err := s.Cache.SetCapacity(k); err != nil {
		return err
	}
	s.Cache.Clear()
	s.Scratch = s.Scratch[:0]
	s.Visited = 0
	return nil
}

// Results returns the cached candidates nearest first. The slice aliases
// Scratch and is only valid until the next Reset.
func (s *Searcher) Results() []Entry {
	s.Scratch = s.Cache.AppendAscending(s.Scratch[:0])
	return s.Scratch
}
