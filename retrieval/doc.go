// Package retrieval answers topic-scoped document queries against the search
// index, with graceful degradation from hybrid to lexical ranking.
package retrieval
