package core

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Topic is a closed category used to route both search and ingestion to the
// correct index. The set of valid topics is defined by configuration; topic
// matching is always an exact-key lookup with no case folding.
type Topic string

// SourceFile is a raw file submitted for ingestion: its bytes, its name, the
// durable-storage URL it was uploaded to, and the access-control labels that
// constrain who may see records derived from it. An empty label set means
// globally readable. SourceFile is read-only once created.
type SourceFile struct {
	Name         string
	URL          string
	AccessLabels []string
	Content      []byte
}

// Section is a contiguous span of text extracted from a SourceFile, with the
// page it came from. Page is 1-based for paginated documents and 0 for
// formats without page structure.
type Section struct {
	Text string
	Page int
}

// Chunk is the retrieval unit: a bounded span of extracted text with a stable
// identity derived from the source file and its position. Re-ingesting the
// same file produces the same chunk IDs, so index upserts overwrite rather
// than duplicate.
type Chunk struct {
	ID           string
	Text         string
	SourcePage   string
	SourceURL    string
	AccessLabels []string
	Page         int
	Ordinal      int
	Vector       []float32
}

// ChunkID derives the stable chunk identity from the source file name and the
// chunk's position within it. The file name is hashed so the ID stays a valid
// index key regardless of what characters the name contains.
func ChunkID(fileName string, page, ordinal int) string {
	return fmt.Sprintf("%016x-%d-%d", uint64(IDFromContent(fileName)), page, ordinal)
}

// SourcePageLabel builds the human-readable provenance label for a chunk,
// e.g. "guide.pdf#page=2". Files without page structure are labeled by name
// alone.
func SourcePageLabel(fileName string, page int) string {
	if page <= 0 {
		return fileName
	}
	return fileName + "#page=" + fmt.Sprint(page)
}

// SearchResult is a retrieved record returned by a ranked query: the source
// label it was derived from, its text content, and the backend's relevance
// score. Results are ephemeral and exist only for the duration of a query
// response.
type SearchResult struct {
	SourcePage string
	Content    string
	Score      float64
}

// FormatResults renders ranked results as a flat citation-annotated text
// block: one "[source-page]: content" entry per result, joined by blank
// lines, in rank order. An empty result set renders as an empty string.
func FormatResults(results []*SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = "[" + r.SourcePage + "]: " + r.Content
	}
	return strings.Join(parts, "\n\n")
}
