package docdex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docdex/config"
	"github.com/poiesic/docdex/core"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	cfg := config.Default()
	cfg.Topics = map[string]string{
		"Model Context Protocol": "kbindex",
		"Flask":                  "webindex",
	}
	cfg.Storage.InMemory = true
	cfg.Index.Path = filepath.Join(t.TempDir(), "index")

	service, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = service.Close() })
	return service
}

func TestServiceEndToEnd(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	content := []byte("The Model Context Protocol lets agents call tools exposed by servers.")
	result, err := service.Ingest(ctx, "Model Context Protocol", "tools.md", content)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Written)

	text, err := service.SearchFormatted(ctx, "Model Context Protocol", "agents call tools")
	require.NoError(t, err)
	assert.Contains(t, text, "[tools.md]: ")
	assert.Contains(t, text, "call tools")
}

func TestServiceTopicIsolation(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Ingest(ctx, "Flask", "routing.md", []byte("URL routing maps paths to view functions."))
	require.NoError(t, err)

	// The other topic's index must not see the document.
	text, err := service.SearchFormatted(ctx, "Model Context Protocol", "URL routing")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestServiceUnknownTopic(t *testing.T) {
	service := newTestService(t)

	_, err := service.Search(context.Background(), "Django", "queryset")
	assert.ErrorIs(t, err, core.ErrUnknownTopic)

	_, err = service.Ingest(context.Background(), "Django", "doc.md", []byte("content"))
	assert.ErrorIs(t, err, core.ErrUnknownTopic)
}

func TestServiceTopics(t *testing.T) {
	service := newTestService(t)

	assert.Equal(t, []core.Topic{"Flask", "Model Context Protocol"}, service.Topics())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Topics = nil

	_, err := New(cfg)
	assert.Error(t, err)
}
