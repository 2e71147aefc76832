package ai

import "context"

// Disabled is the no-op embedder used when vector search is turned off by
// configuration. It returns an absent vector for every text, so downstream
// index records omit the vector field and text-only search still functions.
type Disabled struct{}

var _ Embedder = (*Disabled)(nil)

// NewDisabled creates the no-op embedder.
func NewDisabled() *Disabled {
	return &Disabled{}
}

// EmbedText returns an absent vector.
func (d *Disabled) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return nil, nil
}

// EmbedTexts returns one absent vector per input text.
func (d *Disabled) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}
