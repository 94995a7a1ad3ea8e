// Package searcher provides the per-query traversal state for k-d tree search.
//
// A Searcher owns everything a single query mutates:
//   - BoundedCache of the best candidates seen so far
//   - the visited-node counter
//
// Searchers are pooled and handed out one per query, so the tree itself stays
// read-only and can be shared by concurrent queries.
package searcher
