package extract

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/poiesic/docdex/core"
)

// HTML strips markup from an HTML document and returns the visible text as a
// single unpaginated section.
type HTML struct{}

var _ Extractor = (*HTML)(nil)

// NewHTML creates an HTML extractor.
func NewHTML() *HTML {
	return &HTML{}
}

// Pre-compiled expressions for markup stripping.
var (
	scriptTag = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag   = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	anyTag    = regexp.MustCompile(`(?s)<[^>]+>`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns = regexp.MustCompile(`[ \t]+`)
)

// Extract removes script, style and head content, strips the remaining tags,
// and unescapes entities. The result keeps paragraph separation as newlines.
func (h *HTML) Extract(_ context.Context, file *core.SourceFile) ([]core.Section, error) {
	text := string(file.Content)

	text = commentRe.ReplaceAllString(text, "")
	text = scriptTag.ReplaceAllString(text, "")
	text = styleTag.ReplaceAllString(text, "")
	text = headTag.ReplaceAllString(text, "")
	text = anyTag.ReplaceAllString(text, "\n")
	text = html.UnescapeString(text)

	// Collapse runs of whitespace left behind by removed markup.
	text = spaceRuns.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fmt.Errorf("%s: %w", file.Name, ErrNoText)
	}
	return []core.Section{{Text: text, Page: 0}}, nil
}
