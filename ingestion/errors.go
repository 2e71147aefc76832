package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when an object store is not provided.
	ErrStoreRequired = errors.New("object store required")

	// ErrRegistryRequired is returned when a topic registry is not provided.
	ErrRegistryRequired = errors.New("topic registry required")

	// ErrExtractorsRequired is returned when an extractor registry is not provided.
	ErrExtractorsRequired = errors.New("extractor registry required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrIndexRequired is returned when an index backend is not provided.
	ErrIndexRequired = errors.New("index backend required")

	// ErrNoChunks is returned when extraction produced text but chunking
	// yielded nothing to index.
	ErrNoChunks = errors.New("no chunks produced")
)
