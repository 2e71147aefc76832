package chunk

import (
	"unicode/utf8"

	"github.com/poiesic/docdex/core"
)

// DefaultMaxChars is the default maximum chunk size in bytes.
const DefaultMaxChars = 1000

// DefaultOverlap is the default overlap between adjacent chunks in bytes.
const DefaultOverlap = 100

// Chunker splits extracted sections into bounded-size, slightly overlapping
// chunks. Splitting is deterministic: the same sections and configuration
// always produce the same chunks, which keeps chunk identities stable across
// re-ingestions.
type Chunker struct {
	maxChars int
	overlap  int
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithMaxChars sets the maximum chunk size in bytes.
func WithMaxChars(max int) Option {
	return func(c *Chunker) error {
		if max <= 0 {
			return ErrInvalidChunkSize
		}
		c.maxChars = max
		return nil
	}
}

// WithOverlap sets the overlap between adjacent chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) error {
		if overlap < 0 {
			return ErrInvalidOverlap
		}
		c.overlap = overlap
		return nil
	}
}

// NewChunker creates a chunker with the default size and overlap, then
// applies options. The overlap must be smaller than the chunk size.
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		maxChars: DefaultMaxChars,
		overlap:  DefaultOverlap,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.overlap >= c.maxChars {
		return nil, ErrInvalidOverlap
	}
	return c, nil
}

// Split chunks the file's sections in order. Every non-empty section yields
// at least one chunk, sections shorter than the chunk size yield exactly one,
// and no text is dropped: each chunk after the first within a section starts
// at most `overlap` bytes before the previous chunk's end, so concatenating
// the chunks with overlap regions removed reconstructs the section text.
// Chunks never span sections, which preserves page provenance.
func (c *Chunker) Split(file *core.SourceFile, sections []core.Section) []core.Chunk {
	var chunks []core.Chunk
	ordinal := 0

	for _, section := range sections {
		text := section.Text
		if text == "" {
			continue
		}

		start := 0
		for start < len(text) {
			end := start + c.maxChars
			if end >= len(text) {
				end = len(text)
			} else {
				// Never cut in the middle of a rune.
				for end > start && !utf8.RuneStart(text[end]) {
					end--
				}
				if end == start {
					end = start + c.maxChars // degenerate input, fall back to a byte cut
				}
			}

			chunks = append(chunks, core.Chunk{
				ID:           core.ChunkID(file.Name, section.Page, ordinal),
				Text:         text[start:end],
				SourcePage:   core.SourcePageLabel(file.Name, section.Page),
				SourceURL:    file.URL,
				AccessLabels: file.AccessLabels,
				Page:         section.Page,
				Ordinal:      ordinal,
			})
			ordinal++

			if end == len(text) {
				break
			}

			next := end - c.overlap
			// Keep the overlap region rune-aligned; shrinking it slightly is fine.
			for next < len(text) && !utf8.RuneStart(text[next]) {
				next++
			}
			if next <= start {
				next = end
			}
			start = next
		}
	}

	return chunks
}
