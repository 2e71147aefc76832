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


package bleve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/poiesic/docdex/index"
)

// Store is an embedded full-text index backend. Each index name maps to its
// own bleve index under the root directory, opened lazily on first use.
//
// The backend is lexical-only: vectors on records are accepted and ignored,
// and hybrid queries report ErrRankingUnavailable so callers degrade to
// lexical ranking.
type Store struct {
	rootDir  string
	inMemory bool
	logger   *slog.Logger

	mu      sync.Mutex
	indexes map[string]bleve.Index
	closed  bool
}

var _ index.Index = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithInMemory keeps all indexes in memory. Intended for tests.
func WithInMemory() Option {
	return func(s *Store) error {
		s.inMemory = true
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		rootDir: dir,
		indexes: make(map[string]bleve.Index),
		logger:  slog.Default().With("component", "bleve-store"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if !s.inMemory && s.rootDir == "" {
		return nil, errors.New("bleve store: root directory required")
	}
	return s, nil
}

// Upsert writes records into the named index. IDs overwrite, so re-indexing
// the same source is idempotent.
func (s *Store) Upsert(ctx context.Context, indexName string, records []index.Record) (int, error) {
	if indexName == "" {
		return 0, index.ErrIndexNameRequired
	}
	if len(records) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	idx, err := s.open(indexName)
	if err != nil {
		return 0, err
	}

	batch := idx.NewBatch()
	for _, record := range records {
		doc := chunkDoc{
			Content:      record.Content,
			SourcePage:   record.SourcePage,
			SourceURL:    record.SourceURL,
			AccessLabels: record.AccessLabels,
		}
		if err := batch.Index(record.ID, doc); err != nil {
			return 0, fmt.Errorf("batch record %s: %w", record.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return 0, fmt.Errorf("index batch: %w", err)
	}

	s.logger.Debug("records indexed", "index", indexName, "count", len(records))
	return len(records), nil
}

// Query returns up to topK lexical matches, best first.
func (s *Store) Query(ctx context.Context, indexName string, query string, topK int, mode index.RankingMode) ([]index.Hit, error) {
	if indexName == "" {
		return nil, index.ErrIndexNameRequired
	}
	if query == "" {
		return nil, index.ErrQueryRequired
	}
	if mode == index.RankingHybrid {
		return nil, index.ErrRankingUnavailable
	}
	if topK <= 0 {
		topK = 10
	}

	idx, err := s.open(indexName)
	if err != nil {
		return nil, err
	}

	contentQuery := bleve.NewMatchQuery(query)
	contentQuery.SetField("content")

	pageQuery := bleve.NewMatchQuery(query)
	pageQuery.SetField("source_page")
	pageQuery.SetBoost(0.5)

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(contentQuery, pageQuery), topK, 0, false)
	req.Fields = []string{"content", "source_page"}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", indexName, err)
	}

	hits := make([]index.Hit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		h := index.Hit{ID: hit.ID, Score: hit.Score}
		if content, ok := hit.Fields["content"].(string); ok {
			h.Content = content
		}
		if page, ok := hit.Fields["source_page"].(string); ok {
			h.SourcePage = page
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// DocCount returns the number of documents in the named index.
func (s *Store) DocCount(indexName string) (uint64, error) {
	idx, err := s.open(indexName)
	if err != nil {
		return 0, err
	}
	return idx.DocCount()
}

// Close closes all open indexes.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for name, idx := range s.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	s.indexes = nil
	return errors.Join(errs...)
}

// open returns the bleve index for name, creating it on first use.
func (s *Store) open(name string) (bleve.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("bleve store: closed")
	}
	if idx, ok := s.indexes[name]; ok {
		return idx, nil
	}

	var idx bleve.Index
	var err error
	if s.inMemory {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		path := filepath.Join(s.rootDir, name)
		idx, err = bleve.Open(path)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			s.logger.Info("creating index", "index", name, "path", path)
			idx, err = bleve.New(path, buildIndexMapping())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", name, err)
	}

	s.indexes[name] = idx
	return idx, nil
}

// chunkDoc is the document shape handed to bleve.
type chunkDoc struct {
	Content      string   `json:"content"`
	SourcePage   string   `json:"source_page"`
	SourceURL    string   `json:"source_url"`
	AccessLabels []string `json:"access_labels"`
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "en"
	indexMapping.DefaultField = "content"

	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = true
	contentField.Index = true
	docMapping.AddFieldMappingsAt("content", contentField)

	pageField := bleve.NewTextFieldMapping()
	pageField.Store = true
	pageField.Index = true
	docMapping.AddFieldMappingsAt("source_page", pageField)

	urlField := bleve.NewTextFieldMapping()
	urlField.Store = true
	urlField.Index = false
	docMapping.AddFieldMappingsAt("source_url", urlField)

	labelField := bleve.NewTextFieldMapping()
	labelField.Store = true
	labelField.Index = true
	labelField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("access_labels", labelField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
