// Package extract turns raw source files into ordered text sections.
//
// An extractor variant exists per file format: plain-text passthrough, HTML
// tag stripping, and paginated PDF (parsed locally or delegated to a remote
// document-understanding service when the local parser is disabled by
// configuration). The Registry classifies a file by extension and rejects
// unknown formats with core.ErrUnsupportedFormat instead of guessing.
//
// Sections preserve page-level provenance for paginated formats so chunks
// derived from them can cite the page they came from.
package extract
