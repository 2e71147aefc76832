package extract

import (
	"context"
	"testing"

	"github.com/poiesic/docdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryClassification(t *testing.T) {
	registry := NewRegistry()
	registry.Register(".pdf", NewPDF())

	tests := []struct {
		name string
		want Extractor
	}{
		{name: "notes.txt", want: &PlainText{}},
		{name: "README.md", want: &PlainText{}},
		{name: "page.HTML", want: &HTML{}},
		{name: "guide.pdf", want: &PDF{}},
	}

	for _, tt := range tests {
		extractor, err := registry.ForFile(tt.name)
		require.NoError(t, err, tt.name)
		assert.IsType(t, tt.want, extractor, tt.name)
	}
}

func TestRegistryRejectsUnknownExtension(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.ForFile("archive.zip")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	_, err = registry.ForFile("noextension")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	// PDF is unsupported until a paginated variant is registered.
	_, err = registry.ForFile("guide.pdf")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestPlainTextExtract(t *testing.T) {
	extractor := NewPlainText()

	sections, err := extractor.Extract(context.Background(), &core.SourceFile{
		Name:    "hello.txt",
		Content: []byte("Hello world"),
	})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Hello world", sections[0].Text)
	assert.Equal(t, 0, sections[0].Page)
}

func TestPlainTextExtractRejectsEmptyAndBinary(t *testing.T) {
	extractor := NewPlainText()

	_, err := extractor.Extract(context.Background(), &core.SourceFile{
		Name:    "blank.txt",
		Content: []byte("   \n\t  "),
	})
	assert.ErrorIs(t, err, ErrNoText)

	_, err = extractor.Extract(context.Background(), &core.SourceFile{
		Name:    "junk.txt",
		Content: []byte{0xff, 0xfe, 0x00, 0x80},
	})
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestHTMLExtractStripsMarkup(t *testing.T) {
	extractor := NewHTML()

	page := `<!DOCTYPE html>
<html>
<head><title>Ignored</title><style>body { color: red; }</style></head>
<body>
  <script>alert("nope");</script>
  <h1>Heading</h1>
  <p>First &amp; second.</p>
</body>
</html>`

	sections, err := extractor.Extract(context.Background(), &core.SourceFile{
		Name:    "page.html",
		Content: []byte(page),
	})
	require.NoError(t, err)
	require.Len(t, sections, 1)

	text := sections[0].Text
	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "First & second.")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "<")
}

func TestHTMLExtractRejectsMarkupOnlyInput(t *testing.T) {
	extractor := NewHTML()

	_, err := extractor.Extract(context.Background(), &core.SourceFile{
		Name:    "empty.html",
		Content: []byte("<html><head><title>x</title></head><body></body></html>"),
	})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestPDFExtractRejectsMalformedInput(t *testing.T) {
	extractor := NewPDF()

	_, err := extractor.Extract(context.Background(), &core.SourceFile{
		Name:    "broken.pdf",
		Content: []byte("this is not a pdf at all"),
	})
	assert.ErrorIs(t, err, ErrExtractionFailed)
}
