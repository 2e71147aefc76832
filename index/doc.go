// Package index defines the search index abstraction used by ingestion and
// retrieval, keyed by index name so multiple topics can share one backend.
//
// Two implementations are provided:
//
//   - index/bleve: embedded full-text index, no external service required
//   - index/rest: client for a remote search service with hybrid ranking
package index
