package retrieval

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/index"
	"github.com/poiesic/docdex/topics"
)

// DefaultTopK is the default number of results returned per query.
const DefaultTopK = 10

// Service answers topic-scoped search queries. The topic is resolved to its
// index before the backend is touched, so unknown topics never cost a query.
// Queries prefer hybrid ranking and degrade to lexical ranking when the
// backend reports it unavailable.
type Service struct {
	registry *topics.Registry
	idx      index.Index
	topK     int
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithTopK sets how many results a query returns.
// Default is DefaultTopK.
func WithTopK(topK int) Option {
	return func(s *Service) error {
		if topK < 1 {
			return ErrInvalidTopK
		}
		s.topK = topK
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a retrieval service.
func NewService(registry *topics.Registry, idx index.Index, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	s := &Service{
		registry: registry,
		idx:      idx,
		topK:     DefaultTopK,
		logger:   slog.Default().With("component", "retrieval"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Search returns up to topK ranked results for the query within the topic's
// index, best first.
func (s *Service) Search(ctx context.Context, topic core.Topic, query string) ([]*core.SearchResult, error) {
	indexName, err := s.registry.ResolveIndex(topic)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}

	hits, err := s.idx.Query(ctx, indexName, query, s.topK, index.RankingHybrid)
	if errors.Is(err, index.ErrRankingUnavailable) {
		s.logger.Debug("hybrid ranking unavailable, using lexical", "index", indexName)
		hits, err = s.idx.Query(ctx, indexName, query, s.topK, index.RankingLexical)
	}
	if err != nil {
		s.logger.Error("query failed", "index", indexName, "err", err)
		return nil, err
	}

	results := make([]*core.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = &core.SearchResult{
			SourcePage: hit.SourcePage,
			Content:    hit.Content,
			Score:      hit.Score,
		}
	}
	return results, nil
}

// SearchFormatted runs Search and renders the results as a flat
// citation-annotated text block. No matches render as an empty string.
func (s *Service) SearchFormatted(ctx context.Context, topic core.Topic, query string) (string, error) {
	results, err := s.Search(ctx, topic, query)
	if err != nil {
		return "", err
	}
	return core.FormatResults(results), nil
}
