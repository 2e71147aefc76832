package index

import (
	"errors"
	"fmt"
)

var (
	// ErrRankingUnavailable is returned when a backend cannot serve the
	// requested ranking mode. Callers degrade to lexical ranking.
	ErrRankingUnavailable = errors.New("ranking mode unavailable")

	// ErrIndexNameRequired is returned when an index name is empty.
	ErrIndexNameRequired = errors.New("index name required")

	// ErrQueryRequired is returned when a query string is empty.
	ErrQueryRequired = errors.New("query required")
)

// PartialWriteError reports an upsert where some records were written and
// others rejected. Written holds the success count, FailedIDs the record IDs
// that were not indexed.
type PartialWriteError struct {
	Written   int
	FailedIDs []string
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %d records written, %d failed", e.Written, len(e.FailedIDs))
}
