package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docdex/core"
)

// BatchingEmbedder wraps an Embedder with batching, bounded parallelism and
// transient-failure retry. Texts are split into batches of at most BatchSize
// and the batch calls run concurrently on a worker pool of MaxParallel
// goroutines, which bounds the per-call payload and respects provider rate
// limits without changing the output: vectors come back 1:1 with the input
// texts in input order, regardless of how the batches were grouped.
type BatchingEmbedder struct {
	inner      Embedder
	batchSize  int
	dimensions int
	maxRetries int
	retryDelay time.Duration
	pool       *ants.Pool
	logger     *slog.Logger
}

var _ Embedder = (*BatchingEmbedder)(nil)

// NewBatchingEmbedder wraps inner with the batching behavior configured in cfg.
func NewBatchingEmbedder(inner Embedder, cfg *Config) (*BatchingEmbedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(cfg.MaxParallel)
	if err != nil {
		return nil, err
	}

	return &BatchingEmbedder{
		inner:      inner,
		batchSize:  cfg.BatchSize,
		dimensions: cfg.Dimensions,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		pool:       pool,
		logger:     slog.Default().With("component", "batching-embedder"),
	}, nil
}

// EmbedText generates an embedding for a single text.
func (b *BatchingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := b.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates one vector per input text, preserving order and count.
// Each batch is retried with exponential backoff on transient provider
// failures; after exhaustion the whole call fails rather than returning a
// partial result.
func (b *BatchingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, len(texts))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		offset, batch := start, texts[start:end]

		wg.Add(1)
		submitErr := b.pool.Submit(func() {
			defer wg.Done()
			result, err := b.embedBatch(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			copy(vectors[offset:], result)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// embedBatch runs one provider call with retry and validates the result.
func (b *BatchingEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var result [][]float32

	err := core.RetryWithBackoff(ctx, func() error {
		vecs, err := b.inner.EmbedTexts(ctx, batch)
		if err != nil {
			// Provider failures (rate limits, timeouts) are assumed
			// retryable unless the implementation classified them itself.
			if core.IsTransient(err) {
				return err
			}
			return core.Transient(err)
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("%w: expected %d, received %d", ErrCountMismatch, len(batch), len(vecs))
		}
		if b.dimensions > 0 {
			for i, vec := range vecs {
				if len(vec) != b.dimensions {
					return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
						core.ErrDimensionMismatch, i, len(vec), b.dimensions)
				}
			}
		}
		result = vecs
		return nil
	}, b.maxRetries, b.retryDelay)

	if err != nil {
		b.logger.Error("embedding batch failed", "size", len(batch), "err", err)
		return nil, err
	}
	return result, nil
}

// Release releases the worker pool.
// The embedder should not be used after calling Release.
func (b *BatchingEmbedder) Release() {
	b.pool.Release()
}
