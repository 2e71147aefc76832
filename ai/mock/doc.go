// Package mock provides a deterministic ai.Embedder test double.
// The default behavior hashes the input text so identical texts always
// produce identical vectors, which makes batching-invariance and idempotence
// tests possible without an external embedding service.
package mock
