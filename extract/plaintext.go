package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/docdex/core"
)

// PlainText passes a file's bytes through as a single unpaginated section.
type PlainText struct{}

var _ Extractor = (*PlainText)(nil)

// NewPlainText creates a plain-text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Extract returns the file content as one section with no page structure.
func (p *PlainText) Extract(_ context.Context, file *core.SourceFile) ([]core.Section, error) {
	if !utf8.Valid(file.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", ErrExtractionFailed, file.Name)
	}
	text := string(file.Content)
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}
	return []core.Section{{Text: text, Page: 0}}, nil
}
