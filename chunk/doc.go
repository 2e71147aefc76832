// Package chunk splits extracted sections into the bounded-size overlapping
// chunks that embedding and indexing operate on. Chunk identities are derived
// from the source file and position, so re-ingesting a file overwrites its
// previous records instead of duplicating them.
package chunk
