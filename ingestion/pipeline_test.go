package ingestion_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docdex/ai"
	"github.com/poiesic/docdex/ai/mock"
	"github.com/poiesic/docdex/chunk"
	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/extract"
	"github.com/poiesic/docdex/index"
	bleveindex "github.com/poiesic/docdex/index/bleve"
	"github.com/poiesic/docdex/ingestion"
	badgerstore "github.com/poiesic/docdex/storage/badger"
	"github.com/poiesic/docdex/topics"
)

type fixture struct {
	pipeline *ingestion.Pipeline
	store    *badgerstore.Store
	idx      *bleveindex.Store
}

func newFixture(t *testing.T, embedder ai.Embedder, idx index.Index) *fixture {
	t.Helper()

	store, err := badgerstore.OpenStore("", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	registry, err := topics.NewRegistry(map[string]string{
		"Model Context Protocol": "kbindex",
		"Flask":                  "webindex",
	})
	require.NoError(t, err)

	chunker, err := chunk.NewChunker(chunk.WithMaxChars(200), chunk.WithOverlap(40))
	require.NoError(t, err)

	var bleveStore *bleveindex.Store
	if idx == nil {
		bleveStore, err = bleveindex.NewStore("", bleveindex.WithInMemory())
		require.NoError(t, err)
		t.Cleanup(func() { _ = bleveStore.Close() })
		idx = bleveStore
	}

	if embedder == nil {
		embedder = mock.NewMockEmbedder()
	}

	pipeline, err := ingestion.NewPipeline(
		store, registry, extract.NewRegistry(), chunker, embedder, idx,
		ingestion.WithMaxInFlight(2),
		ingestion.WithRetries(3, time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &fixture{pipeline: pipeline, store: store, idx: bleveStore}
}

func TestIngest_Success(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	content := []byte("The Model Context Protocol standardizes how applications provide context to language models.")
	result, err := f.pipeline.Ingest(ctx, "Model Context Protocol", "mcp-overview.md", content, nil)
	require.NoError(t, err)

	assert.Equal(t, "mcp-overview.md", result.File)
	assert.Equal(t, "docdex://content/mcp-overview.md", result.URL)
	assert.Equal(t, "kbindex", result.Index)
	assert.Equal(t, 1, result.Chunks)
	assert.Equal(t, 1, result.Written)

	// Source file is durably stored.
	stored, _, err := f.store.GetObject(ctx, "content", "mcp-overview.md")
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	// Chunks are searchable in the topic's index.
	hits, err := f.idx.Query(ctx, "kbindex", "standardizes context", 10, index.RankingLexical)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "mcp-overview.md", hits[0].SourcePage)
}

func TestIngest_UnknownTopicFailsFast(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, "Django", "doc.md", []byte("content"), nil)
	require.ErrorIs(t, err, core.ErrUnknownTopic)

	// Nothing was stored.
	infos, err := f.store.ListObjects(ctx, "content")
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestIngest_EmptyFile(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.pipeline.Ingest(context.Background(), "Flask", "empty.txt", nil, nil)
	require.Error(t, err)

	var stage *ingestion.StageError
	require.ErrorAs(t, err, &stage)
	assert.Equal(t, ingestion.StageUpload, stage.Stage)
	assert.ErrorIs(t, err, core.ErrEmptyFile)
}

func TestIngest_UnsupportedFormat(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, "Flask", "diagram.png", []byte{0x89, 0x50}, nil)
	require.Error(t, err)

	var stage *ingestion.StageError
	require.ErrorAs(t, err, &stage)
	assert.Equal(t, ingestion.StageExtract, stage.Stage)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	// Nothing reached the index.
	count, err := f.idx.DocCount("webindex")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngest_EmbedderFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}
	f := newFixture(t, embedder, nil)

	_, err := f.pipeline.Ingest(context.Background(), "Flask", "routes.md", []byte("Routing in Flask uses decorators."), nil)
	require.Error(t, err)

	var stage *ingestion.StageError
	require.ErrorAs(t, err, &stage)
	assert.Equal(t, ingestion.StageEmbed, stage.Stage)

	count, err := f.idx.DocCount("webindex")
	require.NoError(t, err)
	assert.Zero(t, count, "no records may be written when embedding fails")
}

func TestIngest_DisabledEmbeddings(t *testing.T) {
	f := newFixture(t, ai.NewDisabled(), nil)
	ctx := context.Background()

	result, err := f.pipeline.Ingest(ctx, "Flask", "templates.md", []byte("Jinja templates render HTML responses."), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Written)

	hits, err := f.idx.Query(ctx, "webindex", "Jinja templates", 10, index.RankingLexical)
	require.NoError(t, err)
	assert.NotEmpty(t, hits, "text search must work without vectors")
}

func TestIngest_Idempotent(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	content := []byte("Blueprints organize a Flask application into components.")
	_, err := f.pipeline.Ingest(ctx, "Flask", "blueprints.md", content, nil)
	require.NoError(t, err)
	_, err = f.pipeline.Ingest(ctx, "Flask", "blueprints.md", content, nil)
	require.NoError(t, err)

	count, err := f.idx.DocCount("webindex")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count, "re-ingestion must overwrite, not duplicate")
}

func TestIngest_AccessLabels(t *testing.T) {
	idx := &captureIndex{}
	f := newFixture(t, nil, idx)

	_, err := f.pipeline.Ingest(context.Background(), "Flask", "internal.md",
		[]byte("Deployment credentials rotate weekly."),
		&ingestion.IngestOptions{AccessLabels: []string{"ops", "sre"}})
	require.NoError(t, err)

	require.NotEmpty(t, idx.records)
	assert.Equal(t, []string{"ops", "sre"}, idx.records[0].AccessLabels)
}

func TestIngest_PartialWrite(t *testing.T) {
	idx := &captureIndex{
		upsertErr: func(records []index.Record) (int, error) {
			return len(records) - 1, &index.PartialWriteError{
				Written:   len(records) - 1,
				FailedIDs: []string{records[len(records)-1].ID},
			}
		},
	}
	f := newFixture(t, nil, idx)

	long := make([]byte, 0, 600)
	for i := 0; i < 20; i++ {
		long = append(long, []byte("Flask request handling explained in detail. ")...)
	}
	result, err := f.pipeline.Ingest(context.Background(), "Flask", "requests.md", long, nil)
	require.Error(t, err)

	var stage *ingestion.StageError
	require.ErrorAs(t, err, &stage)
	assert.Equal(t, ingestion.StageIndex, stage.Stage)

	var partial *index.PartialWriteError
	require.ErrorAs(t, err, &partial)

	require.NotNil(t, result)
	assert.Equal(t, result.Chunks-1, result.Written)
}

func TestIngest_TransientIndexErrorRetried(t *testing.T) {
	idx := &captureIndex{}
	idx.upsertErr = func(records []index.Record) (int, error) {
		if idx.calls == 1 {
			return 0, core.Transient(errors.New("backend 503"))
		}
		return len(records), nil
	}
	f := newFixture(t, nil, idx)

	result, err := f.pipeline.Ingest(context.Background(), "Flask", "hooks.md",
		[]byte("Before-request hooks run before each request."), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, idx.calls, "a transient write failure must be retried")
	assert.Equal(t, result.Chunks, result.Written)
}

func TestIngest_PersistentIndexErrorExhaustsRetries(t *testing.T) {
	idx := &captureIndex{
		upsertErr: func([]index.Record) (int, error) {
			return 0, core.Transient(errors.New("backend 503"))
		},
	}
	f := newFixture(t, nil, idx)

	_, err := f.pipeline.Ingest(context.Background(), "Flask", "hooks.md",
		[]byte("Before-request hooks run before each request."), nil)
	require.Error(t, err)

	var stage *ingestion.StageError
	require.ErrorAs(t, err, &stage)
	assert.Equal(t, ingestion.StageIndex, stage.Stage)
	assert.Equal(t, 3, idx.calls, "retries stop after the configured attempts")
}

func TestIngest_TransientExtractErrorRetried(t *testing.T) {
	store, err := badgerstore.OpenStore("", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	registry, err := topics.NewRegistry(map[string]string{"Flask": "webindex"})
	require.NoError(t, err)

	chunker, err := chunk.NewChunker(chunk.WithMaxChars(200), chunk.WithOverlap(40))
	require.NoError(t, err)

	extractors := extract.NewRegistry()
	flaky := &flakyExtractor{failures: 1}
	extractors.Register(".md", flaky)

	idx := &captureIndex{}
	pipeline, err := ingestion.NewPipeline(store, registry, extractors, chunker, mock.NewMockEmbedder(), idx,
		ingestion.WithRetries(3, time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	result, err := pipeline.Ingest(context.Background(), "Flask", "hooks.md",
		[]byte("Before-request hooks run before each request."), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, flaky.calls, "a transient extraction failure must be retried")
	assert.Equal(t, 1, result.Written)
}

func TestReingestStored(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, "Flask", "a.md", []byte("Sessions store per-user state."), nil)
	require.NoError(t, err)
	_, err = f.pipeline.Ingest(ctx, "Flask", "b.md", []byte("Extensions add functionality to the core."), nil)
	require.NoError(t, err)

	results, err := f.pipeline.ReingestStored(ctx, "Flask")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	count, err := f.idx.DocCount("webindex")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestReingestStored_PreservesAccessLabels(t *testing.T) {
	idx := &captureIndex{}
	f := newFixture(t, nil, idx)
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, "Flask", "internal.md",
		[]byte("Deployment credentials rotate weekly."),
		&ingestion.IngestOptions{AccessLabels: []string{"ops"}})
	require.NoError(t, err)

	idx.records = nil
	_, err = f.pipeline.ReingestStored(ctx, "Flask")
	require.NoError(t, err)

	require.NotEmpty(t, idx.records)
	assert.Equal(t, []string{"ops"}, idx.records[0].AccessLabels,
		"rebuilt records keep the visibility of the originals")
}

func TestNewPipeline_Validation(t *testing.T) {
	_, err := ingestion.NewPipeline(nil, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ingestion.ErrStoreRequired)
}

// captureIndex records upserted documents and optionally injects write errors.
type captureIndex struct {
	records   []index.Record
	calls     int
	upsertErr func(records []index.Record) (int, error)
}

func (c *captureIndex) Upsert(_ context.Context, _ string, records []index.Record) (int, error) {
	c.calls++
	c.records = append(c.records, records...)
	if c.upsertErr != nil {
		return c.upsertErr(records)
	}
	return len(records), nil
}

func (c *captureIndex) Query(_ context.Context, _ string, _ string, _ int, _ index.RankingMode) ([]index.Hit, error) {
	return nil, nil
}

func (c *captureIndex) Close() error { return nil }

// flakyExtractor fails transiently a fixed number of times, then succeeds.
type flakyExtractor struct {
	failures int
	calls    int
}

func (f *flakyExtractor) Extract(_ context.Context, file *core.SourceFile) ([]core.Section, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, core.Transient(errors.New("extraction service returned 503"))
	}
	return []core.Section{{Text: string(file.Content), Page: 0}}, nil
}
