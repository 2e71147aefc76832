package ai

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrConfigRequired is returned when a config is not provided.
	ErrConfigRequired = errors.New("config required")

	// ErrCountMismatch is returned when a provider returns a different number
	// of vectors than texts submitted.
	ErrCountMismatch = errors.New("embedding count mismatch")
)
