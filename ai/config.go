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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the embedding service.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server.
	Host string

	// Model is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	Model string

	// APIKey authenticates against the embedding service. Local
	// OpenAI-compatible servers usually accept any value.
	APIKey string

	// Dimensions is the vector dimension the target index expects. When
	// non-zero, every returned vector is checked against it; a mismatch is a
	// configuration error, never silently truncated or padded.
	Dimensions int

	// BatchSize is the maximum number of texts per embedding call.
	// Default: 16
	BatchSize int

	// MaxParallel bounds how many embedding batch calls run concurrently.
	// Default: 2
	MaxParallel int

	// MaxRetries is the attempt count for transient provider failures.
	// Default: 3
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff between retries.
	// Default: 1s
	RetryDelay time.Duration

	// Disabled turns vector computation off entirely. Chunks are indexed
	// without vectors and text-only search still functions.
	Disabled bool
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the embedding service API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithDimensions sets the expected vector dimension.
func WithDimensions(dims int) ConfigOption {
	return func(c *Config) {
		c.Dimensions = dims
	}
}

// WithBatchSize sets the maximum texts per embedding call.
func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// WithMaxParallel bounds concurrent embedding batch calls.
func WithMaxParallel(n int) ConfigOption {
	return func(c *Config) {
		c.MaxParallel = n
	}
}

// WithRetries sets the attempt count and base backoff delay for transient failures.
func WithRetries(maxRetries int, baseDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryDelay = baseDelay
	}
}

// WithDisabled turns vector computation off.
func WithDisabled(disabled bool) ConfigOption {
	return func(c *Config) {
		c.Disabled = disabled
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible embedding service.
func DefaultConfig() *Config {
	return &Config{
		Host:        "http://localhost:11434/v1",
		Model:       "embeddinggemma",
		APIKey:      "none",
		BatchSize:   16,
		MaxParallel: 2,
		MaxRetries:  3,
		RetryDelay:  time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the host if missing, which is required by most
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// A disabled config skips the provider settings entirely.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Disabled {
		return nil
	}
	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.Dimensions < 0 {
		return errors.New("ai config: Dimensions must not be negative")
	}
	if c.BatchSize < 1 {
		return errors.New("ai config: BatchSize must be at least 1")
	}
	if c.MaxParallel < 1 {
		return errors.New("ai config: MaxParallel must be at least 1")
	}
	if c.MaxRetries < 1 {
		return errors.New("ai config: MaxRetries must be at least 1")
	}
	if c.RetryDelay <= 0 {
		return errors.New("ai config: RetryDelay must be positive")
	}
	return nil
}
