package chunk

import "errors"

var (
	// ErrInvalidChunkSize is returned for a non-positive maximum chunk size.
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

	// ErrInvalidOverlap is returned when the overlap is negative or not
	// smaller than the chunk size.
	ErrInvalidOverlap = errors.New("overlap must be non-negative and smaller than the chunk size")
)
