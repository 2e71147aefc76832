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


package index

import "context"

// RankingMode selects how query results are ranked.
type RankingMode string

const (
	// RankingHybrid combines lexical matching with vector similarity and
	// semantic reranking. Not every backend supports it; unsupported backends
	// return ErrRankingUnavailable and callers fall back to RankingLexical.
	RankingHybrid RankingMode = "hybrid"

	// RankingLexical ranks by full-text relevance only.
	RankingLexical RankingMode = "lexical"
)

// Record is one indexable chunk of a source document.
type Record struct {
	// ID is the deterministic document key. Re-indexing the same source
	// content produces the same IDs, so writes overwrite rather than
	// accumulate.
	ID string

	// Content is the chunk text.
	Content string

	// SourcePage labels the origin of the chunk, e.g. "report.pdf#page=3".
	SourcePage string

	// SourceURL points at the stored copy of the source file.
	SourceURL string

	// AccessLabels restrict which callers may see the record. Empty means
	// unrestricted.
	AccessLabels []string

	// Vector is the embedding for the chunk. Nil when embeddings are
	// disabled; the record is then indexed for text-only search.
	Vector []float32
}

// Hit is one query result.
type Hit struct {
	ID         string
	Content    string
	SourcePage string
	Score      float64
}

// Index stores and queries chunk records grouped by named indexes.
type Index interface {
	// Upsert writes records into the named index, overwriting records with
	// matching IDs. It returns the number of records written. When some
	// records fail and others succeed the returned error is a
	// *PartialWriteError carrying the failed IDs.
	Upsert(ctx context.Context, indexName string, records []Record) (int, error)

	// Query returns up to topK hits for the query string, best first.
	// An unsupported mode yields ErrRankingUnavailable.
	Query(ctx context.Context, indexName string, query string, topK int, mode RankingMode) ([]Hit, error)

	// Close releases backend resources.
	Close() error
}
