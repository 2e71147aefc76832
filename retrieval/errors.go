package retrieval

import "errors"

var (
	// ErrRegistryRequired is returned when a topic registry is not provided.
	ErrRegistryRequired = errors.New("topic registry required")

	// ErrIndexRequired is returned when an index backend is not provided.
	ErrIndexRequired = errors.New("index backend required")

	// ErrEmptyQuery is returned when the query string is empty.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrInvalidTopK is returned when the result limit is not positive.
	ErrInvalidTopK = errors.New("topK must be at least 1")
)
