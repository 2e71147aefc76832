package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/docdex/core"
)

// Extractor turns a raw source file into an ordered sequence of text sections
// with positional metadata. Implementations must be thread-safe for
// concurrent use and must not mutate the source file.
type Extractor interface {
	// Extract parses the file's bytes and returns its text sections in
	// document order. Returns ErrExtractionFailed (wrapping the cause) when
	// the bytes cannot be parsed.
	Extract(ctx context.Context, file *core.SourceFile) ([]core.Section, error)
}

// Registry selects an extractor variant for a file by its extension.
// Classification is a pure function over file metadata; a file whose
// extension has no registered variant is rejected with
// core.ErrUnsupportedFormat rather than mis-parsed by a catch-all.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates a registry with the built-in text variants registered:
// plain-text passthrough for .txt, .md, .csv, .json and .log, and the HTML
// tag-stripping variant for .html and .htm. Paginated-document variants are
// registered by the caller, since their backing (local parser or remote
// extraction service) is a configuration decision.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}

	plain := NewPlainText()
	for _, ext := range []string{".txt", ".md", ".csv", ".json", ".log"} {
		r.Register(ext, plain)
	}

	html := NewHTML()
	r.Register(".html", html)
	r.Register(".htm", html)

	return r
}

// Register binds an extractor to a file extension (with leading dot).
// Later registrations replace earlier ones for the same extension.
func (r *Registry) Register(ext string, extractor Extractor) {
	r.byExt[strings.ToLower(ext)] = extractor
}

// ForFile returns the extractor variant for the named file.
// Returns core.ErrUnsupportedFormat when no variant matches the extension.
func (r *Registry) ForFile(name string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(name))
	extractor, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, ext)
	}
	return extractor, nil
}

// Extensions returns the registered extensions. Intended for diagnostics.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
