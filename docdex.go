// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package docdex

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/docdex/ai"
	"github.com/poiesic/docdex/ai/openai"
	"github.com/poiesic/docdex/chunk"
	"github.com/poiesic/docdex/config"
	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/extract"
	"github.com/poiesic/docdex/index"
	bleveindex "github.com/poiesic/docdex/index/bleve"
	restindex "github.com/poiesic/docdex/index/rest"
	"github.com/poiesic/docdex/ingestion"
	"github.com/poiesic/docdex/retrieval"
	"github.com/poiesic/docdex/storage/badger"
	"github.com/poiesic/docdex/topics"
)

// Service wires the full document search stack from configuration: object
// store, topic registry, extractors, chunker, embedder, index backend,
// ingestion pipeline and retrieval service.
type Service struct {
	store     *badger.Store
	registry  *topics.Registry
	idx       index.Index
	embedder  ai.Embedder
	batching  *ai.BatchingEmbedder
	pipeline  *ingestion.Pipeline
	retriever *retrieval.Service
	logger    *slog.Logger
}

// New builds a Service from the application configuration.
func New(cfg *config.AppConfig) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := badger.OpenStore(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		return nil, err
	}

	registry, err := topics.NewRegistry(cfg.Topics)
	if err != nil {
		store.Close()
		return nil, err
	}

	extractors, err := buildExtractors(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	chunker, err := chunk.NewChunker(
		chunk.WithMaxChars(cfg.Ingestion.ChunkSize),
		chunk.WithOverlap(cfg.Ingestion.ChunkOverlap),
	)
	if err != nil {
		store.Close()
		return nil, err
	}

	embedder, batching, err := buildEmbedder(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	idx, err := buildIndex(cfg)
	if err != nil {
		if batching != nil {
			batching.Release()
		}
		store.Close()
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(store, registry, extractors, chunker, embedder, idx,
		ingestion.WithMaxInFlight(cfg.Ingestion.MaxInFlight),
		ingestion.WithContainer(cfg.Storage.Container),
		ingestion.WithRetries(cfg.Ingestion.MaxRetries, time.Second),
	)
	if err != nil {
		idx.Close()
		if batching != nil {
			batching.Release()
		}
		store.Close()
		return nil, err
	}

	retriever, err := retrieval.NewService(registry, idx,
		retrieval.WithTopK(cfg.Retrieval.TopK),
	)
	if err != nil {
		pipeline.Release()
		idx.Close()
		if batching != nil {
			batching.Release()
		}
		store.Close()
		return nil, err
	}

	return &Service{
		store:     store,
		registry:  registry,
		idx:       idx,
		embedder:  embedder,
		batching:  batching,
		pipeline:  pipeline,
		retriever: retriever,
		logger:    slog.Default().With("component", "docdex"),
	}, nil
}

// Ingest stores and indexes one document under the given topic.
func (s *Service) Ingest(ctx context.Context, topic core.Topic, fileName string, data []byte, accessLabels ...string) (*ingestion.Result, error) {
	return s.pipeline.Ingest(ctx, topic, fileName, data, &ingestion.IngestOptions{
		AccessLabels: accessLabels,
	})
}

// Search returns ranked results for the query within the topic's index.
func (s *Service) Search(ctx context.Context, topic core.Topic, query string) ([]*core.SearchResult, error) {
	return s.retriever.Search(ctx, topic, query)
}

// SearchFormatted returns search results rendered as a citation-annotated
// text block, one "[source]: content" entry per result.
func (s *Service) SearchFormatted(ctx context.Context, topic core.Topic, query string) (string, error) {
	return s.retriever.SearchFormatted(ctx, topic, query)
}

// Reindex re-extracts, re-chunks, re-embeds and re-indexes every stored
// document into the topic's index.
func (s *Service) Reindex(ctx context.Context, topic core.Topic) ([]*ingestion.Result, error) {
	return s.pipeline.ReingestStored(ctx, topic)
}

// Topics returns the configured topics in sorted order.
func (s *Service) Topics() []core.Topic {
	return s.registry.Topics()
}

// Close releases all backends.
func (s *Service) Close() error {
	s.pipeline.Release()
	if s.batching != nil {
		s.batching.Release()
	}
	if err := s.idx.Close(); err != nil {
		s.logger.Error("error closing index backend", "err", err)
		return err
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing object store", "err", err)
		return err
	}
	return nil
}

// buildExtractors registers the built-in text variants plus the configured
// paginated-document variant: the remote extraction service when one is
// configured, the local PDF parser otherwise.
func buildExtractors(cfg *config.AppConfig) (*extract.Registry, error) {
	registry := extract.NewRegistry()
	if cfg.Extraction.RemoteURL != "" {
		remote, err := extract.NewRemote(extract.RemoteConfig{
			BaseURL: cfg.Extraction.RemoteURL,
			APIKey:  cfg.Extraction.APIKey(),
		})
		if err != nil {
			return nil, err
		}
		registry.Register(".pdf", remote)
	} else {
		registry.Register(".pdf", extract.NewPDF())
	}
	return registry, nil
}

func buildEmbedder(cfg *config.AppConfig) (ai.Embedder, *ai.BatchingEmbedder, error) {
	if cfg.Embedding.Disabled {
		return ai.NewDisabled(), nil, nil
	}

	aiCfg := ai.NewConfig(
		ai.WithHost(cfg.Embedding.Host),
		ai.WithModel(cfg.Embedding.Model),
		ai.WithAPIKey(cfg.Embedding.APIKey()),
		ai.WithDimensions(cfg.Embedding.Dimensions),
		ai.WithBatchSize(cfg.Embedding.BatchSize),
		ai.WithMaxParallel(cfg.Embedding.MaxParallel),
		ai.WithRetries(cfg.Embedding.MaxRetries, time.Second),
	)
	inner, err := openai.NewEmbedder(aiCfg)
	if err != nil {
		return nil, nil, err
	}
	batching, err := ai.NewBatchingEmbedder(inner, aiCfg)
	if err != nil {
		return nil, nil, err
	}
	return batching, batching, nil
}

func buildIndex(cfg *config.AppConfig) (index.Index, error) {
	switch cfg.Index.Type {
	case "rest":
		return restindex.NewClient(restindex.Config{
			BaseURL: cfg.Index.BaseURL,
			APIKey:  cfg.Index.APIKey(),
		})
	default:
		return bleveindex.NewStore(cfg.Index.Path)
	}
}
