package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docdex/ai"
	"github.com/poiesic/docdex/chunk"
	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/extract"
	"github.com/poiesic/docdex/index"
	"github.com/poiesic/docdex/storage"
	"github.com/poiesic/docdex/topics"
)

// DefaultContainer is the object store container used when none is configured.
const DefaultContainer = "content"

// Pipeline orchestrates document ingestion: the source file is stored
// durably, extracted into sections, chunked, embedded and indexed into the
// index owned by the caller's topic. Every failure is tagged with the stage
// that produced it.
//
// A bounded worker pool caps how many ingestions run at once; callers block
// until a worker is free, then until their own ingestion completes.
type Pipeline struct {
	store      storage.ObjectStore
	registry   *topics.Registry
	extractors *extract.Registry
	chunker    *chunk.Chunker
	embedder   ai.Embedder
	idx        index.Index
	container  string
	maxRetries int
	retryDelay time.Duration
	pool       *ants.Pool
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithMaxInFlight caps how many ingestions run concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithMaxInFlight(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithContainer sets the object store container for uploaded files.
// Default is DefaultContainer.
func WithContainer(container string) Option {
	return func(p *Pipeline) error {
		if container == "" {
			return storage.ErrContainerRequired
		}
		p.container = container
		return nil
	}
}

// WithRetries sets the attempt count and base backoff delay used when a
// backend call fails transiently. Defaults are 3 attempts, 1s base delay.
func WithRetries(maxRetries int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxRetries < 1 {
			maxRetries = 1
		}
		if baseDelay <= 0 {
			baseDelay = time.Second
		}
		p.maxRetries = maxRetries
		p.retryDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	store storage.ObjectStore,
	registry *topics.Registry,
	extractors *extract.Registry,
	chunker *chunk.Chunker,
	embedder ai.Embedder,
	idx index.Index,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if extractors == nil {
		return nil, ErrExtractorsRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:      store,
		registry:   registry,
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		idx:        idx,
		container:  DefaultContainer,
		maxRetries: 3,
		retryDelay: time.Second,
		pool:       pool,
		logger:     slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	// AccessLabels restrict visibility of every record derived from the file.
	AccessLabels []string
}

// Result summarizes a completed ingestion.
type Result struct {
	File    string // source file name
	URL     string // object store URL of the uploaded file
	Topic   core.Topic
	Index   string // index name the chunks were written to
	Chunks  int    // chunks produced
	Written int    // records written to the index
}

// Ingest runs the full pipeline for one file and blocks until it completes.
// The topic is resolved before any work happens: an unknown topic fails fast
// with core.ErrUnknownTopic and nothing is stored. All other failures are
// *StageError values naming the failed stage; by then the file may already
// be in the object store, which is harmless since re-ingestion overwrites.
func (p *Pipeline) Ingest(ctx context.Context, topic core.Topic, fileName string, data []byte, opts *IngestOptions) (*Result, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}

	indexName, err := p.registry.ResolveIndex(topic)
	if err != nil {
		return nil, err
	}

	file := &core.SourceFile{
		Name:         fileName,
		AccessLabels: opts.AccessLabels,
		Content:      data,
	}
	if err := core.ValidateSourceFile(file); err != nil {
		return nil, stageErr(StageUpload, err)
	}

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)

	submitErr := p.pool.Submit(func() {
		res, err := p.run(ctx, topic, indexName, file)
		done <- outcome{res: res, err: err}
	})
	if submitErr != nil {
		return nil, submitErr
	}

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run executes the pipeline stages for a validated file.
func (p *Pipeline) run(ctx context.Context, topic core.Topic, indexName string, file *core.SourceFile) (*Result, error) {
	url, err := p.store.PutObject(ctx, p.container, file.Name, file.Content, file.AccessLabels...)
	if err != nil {
		p.logger.Error("upload failed", "file", file.Name, "err", err)
		return nil, stageErr(StageUpload, err)
	}
	file.URL = url

	return p.process(ctx, topic, indexName, file)
}

// process runs the stages after upload: extract, chunk, embed, index.
func (p *Pipeline) process(ctx context.Context, topic core.Topic, indexName string, file *core.SourceFile) (*Result, error) {
	logger := p.logger.With("file", file.Name, "topic", string(topic), "index", indexName)

	// Extract
	extractor, err := p.extractors.ForFile(file.Name)
	if err != nil {
		logger.Error("no extractor for file", "err", err)
		return nil, stageErr(StageExtract, err)
	}
	var sections []core.Section
	err = core.RetryWithBackoff(ctx, func() error {
		var exErr error
		sections, exErr = extractor.Extract(ctx, file)
		return exErr
	}, p.maxRetries, p.retryDelay)
	if err != nil {
		logger.Error("extraction failed", "err", err)
		return nil, stageErr(StageExtract, err)
	}

	// Chunk
	chunks := p.chunker.Split(file, sections)
	if len(chunks) == 0 {
		logger.Error("chunking produced nothing")
		return nil, stageErr(StageChunk, ErrNoChunks)
	}

	// Embed
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		logger.Error("embedding failed", "chunks", len(chunks), "err", err)
		return nil, stageErr(StageEmbed, err)
	}

	// Index
	records := make([]index.Record, len(chunks))
	for i, c := range chunks {
		records[i] = index.Record{
			ID:           c.ID,
			Content:      c.Text,
			SourcePage:   c.SourcePage,
			SourceURL:    c.SourceURL,
			AccessLabels: c.AccessLabels,
			Vector:       vectors[i],
		}
	}
	var written int
	err = core.RetryWithBackoff(ctx, func() error {
		var upErr error
		written, upErr = p.idx.Upsert(ctx, indexName, records)
		return upErr
	}, p.maxRetries, p.retryDelay)
	result := &Result{
		File:    file.Name,
		URL:     file.URL,
		Topic:   topic,
		Index:   indexName,
		Chunks:  len(chunks),
		Written: written,
	}
	if err != nil {
		logger.Error("indexing failed", "written", written, "chunks", len(chunks), "err", err)
		return result, stageErr(StageIndex, err)
	}

	logger.Info("file ingested", "chunks", len(chunks), "written", written)
	return result, nil
}

// ReingestStored re-runs extraction, chunking, embedding and indexing for
// every object stored in the pipeline's container, without re-uploading.
// Intended for rebuilding an index after a mapping or model change. Files
// that fail are logged and skipped; the first error is returned alongside
// the results of the files that succeeded.
func (p *Pipeline) ReingestStored(ctx context.Context, topic core.Topic) ([]*Result, error) {
	indexName, err := p.registry.ResolveIndex(topic)
	if err != nil {
		return nil, err
	}

	infos, err := p.store.ListObjects(ctx, p.container)
	if err != nil {
		return nil, stageErr(StageUpload, err)
	}

	var results []*Result
	var firstErr error
	for _, info := range infos {
		data, _, err := p.store.GetObject(ctx, p.container, info.Name)
		if err != nil {
			p.logger.Error("skipping stored object", "file", info.Name, "err", err)
			if firstErr == nil {
				firstErr = stageErr(StageUpload, err)
			}
			continue
		}

		file := &core.SourceFile{
			Name:         info.Name,
			URL:          info.URL(),
			AccessLabels: info.AccessLabels,
			Content:      data,
		}
		res, err := p.process(ctx, topic, indexName, file)
		if err != nil {
			p.logger.Error("re-ingestion failed", "file", info.Name, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, res)
	}
	return results, firstErr
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
