package ai_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docdex/ai"
	"github.com/poiesic/docdex/ai/mock"
	"github.com/poiesic/docdex/core"
)

func testConfig(opts ...ai.ConfigOption) *ai.Config {
	base := []ai.ConfigOption{
		ai.WithRetries(3, time.Millisecond),
		ai.WithDimensions(mock.DefaultDimensions),
	}
	return ai.NewConfig(append(base, opts...)...)
}

func TestNewBatchingEmbedder_Validation(t *testing.T) {
	_, err := ai.NewBatchingEmbedder(nil, testConfig())
	assert.ErrorIs(t, err, ai.ErrEmbedderRequired)

	_, err = ai.NewBatchingEmbedder(mock.NewMockEmbedder(), nil)
	assert.ErrorIs(t, err, ai.ErrConfigRequired)

	_, err = ai.NewBatchingEmbedder(mock.NewMockEmbedder(), testConfig(ai.WithBatchSize(0)))
	assert.Error(t, err)
}

func TestEmbedTexts_PreservesOrderAcrossBatches(t *testing.T) {
	texts := make([]string, 37)
	for i := range texts {
		texts[i] = fmt.Sprintf("document number %d", i)
	}

	small, err := ai.NewBatchingEmbedder(mock.NewMockEmbedder(), testConfig(ai.WithBatchSize(3)))
	require.NoError(t, err)
	defer small.Release()

	large, err := ai.NewBatchingEmbedder(mock.NewMockEmbedder(), testConfig(ai.WithBatchSize(50)))
	require.NoError(t, err)
	defer large.Release()

	ctx := context.Background()
	fromSmall, err := small.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	fromLarge, err := large.EmbedTexts(ctx, texts)
	require.NoError(t, err)

	// Batch grouping must not change the output.
	require.Len(t, fromSmall, len(texts))
	assert.Equal(t, fromLarge, fromSmall)
}

func TestEmbedTexts_Empty(t *testing.T) {
	inner := mock.NewMockEmbedder()
	embedder, err := ai.NewBatchingEmbedder(inner, testConfig())
	require.NoError(t, err)
	defer embedder.Release()

	vectors, err := embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Equal(t, 0, inner.CallCount())
}

func TestEmbedTexts_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	inner := mock.NewMockEmbedder()
	inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) < 3 {
			return nil, core.Transient(errors.New("rate limited"))
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = make([]float32, mock.DefaultDimensions)
		}
		return vectors, nil
	}

	embedder, err := ai.NewBatchingEmbedder(inner, testConfig(ai.WithBatchSize(8)))
	require.NoError(t, err)
	defer embedder.Release()

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbedTexts_RetryExhaustion(t *testing.T) {
	var calls atomic.Int32
	inner := mock.NewMockEmbedder()
	inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls.Add(1)
		return nil, core.Transient(errors.New("service unavailable"))
	}

	embedder, err := ai.NewBatchingEmbedder(inner, testConfig(ai.WithBatchSize(8)))
	require.NoError(t, err)
	defer embedder.Release()

	_, err = embedder.EmbedTexts(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbedTexts_DimensionMismatchNotRetried(t *testing.T) {
	var calls atomic.Int32
	inner := mock.NewMockEmbedder()
	inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls.Add(1)
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = make([]float32, 8)
		}
		return vectors, nil
	}

	embedder, err := ai.NewBatchingEmbedder(inner, testConfig(ai.WithDimensions(384)))
	require.NoError(t, err)
	defer embedder.Release()

	_, err = embedder.EmbedTexts(context.Background(), []string{"a"})
	require.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.Equal(t, int32(1), calls.Load(), "configuration errors must not be retried")
}

func TestEmbedTexts_CountMismatch(t *testing.T) {
	inner := mock.NewMockEmbedder()
	inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{make([]float32, mock.DefaultDimensions)}, nil
	}

	embedder, err := ai.NewBatchingEmbedder(inner, testConfig())
	require.NoError(t, err)
	defer embedder.Release()

	_, err = embedder.EmbedTexts(context.Background(), []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ai.ErrCountMismatch)
}

func TestEmbedText_SingleText(t *testing.T) {
	inner := mock.NewMockEmbedder()
	embedder, err := ai.NewBatchingEmbedder(inner, testConfig())
	require.NoError(t, err)
	defer embedder.Release()

	vector, err := embedder.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vector, mock.DefaultDimensions)

	again, err := embedder.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, vector, again)
}

func TestDisabledEmbedder(t *testing.T) {
	embedder := ai.NewDisabled()

	vector, err := embedder.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, vector)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Nil(t, vectors[0])
	assert.Nil(t, vectors[1])
}
