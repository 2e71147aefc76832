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


// Package ai provides the embedding abstraction used by ingestion and retrieval.
//
// The Embedder interface generates fixed-dimension vectors from text. The
// package includes:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: deterministic test double
//   - BatchingEmbedder: decorator adding batching, bounded parallelism,
//     transient-failure retry and vector-dimension validation
//   - Disabled: no-op embedder for deployments with vector search turned off
//
// Public constructors in the implementation packages return the Embedder
// interface to enforce abstraction; the mock constructor returns the concrete
// type so tests can inject behavior and assert call counts.
//
// Batching is purely a throughput optimization: the vectors produced for a
// set of texts do not depend on how the texts were grouped into provider
// calls.
package ai
