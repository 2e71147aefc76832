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


package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StorageConfig configures the object store for uploaded source files.
type StorageConfig struct {
	// Path is the BadgerDB directory. Empty with InMemory=false is invalid.
	Path      string `yaml:"path"`
	InMemory  bool   `yaml:"in_memory"`
	Container string `yaml:"container"`
}

// IndexConfig selects and configures the search index backend.
type IndexConfig struct {
	// Type is "bleve" (embedded, lexical-only) or "rest" (remote service
	// with hybrid ranking).
	Type string `yaml:"type"`

	// Path is the bleve index root directory (bleve backend).
	Path string `yaml:"path"`

	// BaseURL and APIKeyEnv configure the remote service (rest backend).
	// The API key is read from the named environment variable.
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Disabled    bool   `yaml:"disabled"`
	Host        string `yaml:"host"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Dimensions  int    `yaml:"dimensions"`
	BatchSize   int    `yaml:"batch_size"`
	MaxParallel int    `yaml:"max_parallel"`
	MaxRetries  int    `yaml:"max_retries"`
}

// ExtractionConfig configures paginated-document extraction.
type ExtractionConfig struct {
	// RemoteURL, when set, routes PDF extraction to a remote extraction
	// service instead of the built-in parser.
	RemoteURL string `yaml:"remote_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// IngestionConfig configures the ingestion pipeline.
type IngestionConfig struct {
	MaxInFlight  int `yaml:"max_in_flight"`
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// MaxRetries is the attempt count for transient extraction and index
	// backend failures.
	MaxRetries int `yaml:"max_retries"`
}

// RetrievalConfig configures query answering.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	// Topics maps each supported topic to the index that owns it.
	Topics map[string]string `yaml:"topics"`

	Storage    StorageConfig    `yaml:"storage"`
	Index      IndexConfig      `yaml:"index"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Ingestion  IngestionConfig  `yaml:"ingestion"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the configuration used when no config file exists: one
// general topic, embedded index, local storage, embeddings disabled.
func Default() *AppConfig {
	cfg := &AppConfig{
		Topics: map[string]string{
			"General": "kbindex",
		},
		Storage:   StorageConfig{Path: "data/objects"},
		Index:     IndexConfig{Type: "bleve", Path: "data/index"},
		Embedding: EmbeddingConfig{Disabled: true},
	}
	applyDefaults(cfg)
	return cfg
}

// Validate checks settings that defaults cannot repair.
func (c *AppConfig) Validate() error {
	if len(c.Topics) == 0 {
		return errors.New("at least one topic must be configured")
	}
	switch c.Index.Type {
	case "bleve":
		if c.Index.Path == "" {
			return errors.New("index.path is required for the bleve backend")
		}
	case "rest":
		if c.Index.BaseURL == "" {
			return errors.New("index.base_url is required for the rest backend")
		}
	default:
		return fmt.Errorf("unknown index.type %q", c.Index.Type)
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return errors.New("storage.path is required unless storage.in_memory is set")
	}
	if c.Ingestion.ChunkOverlap >= c.Ingestion.ChunkSize {
		return errors.New("ingestion.chunk_overlap must be smaller than ingestion.chunk_size")
	}
	return nil
}

// APIKey resolves the embedding API key from the configured environment
// variable. Returns "" when unset.
func (c *EmbeddingConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// APIKey resolves the index API key from the configured environment variable.
func (c *IndexConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// APIKey resolves the extraction service API key from the configured
// environment variable.
func (c *ExtractionConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Storage.Container == "" {
		cfg.Storage.Container = "content"
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "bleve"
	}
	if !cfg.Embedding.Disabled {
		if cfg.Embedding.Host == "" {
			cfg.Embedding.Host = "http://localhost:11434/v1"
		}
		if cfg.Embedding.Model == "" {
			cfg.Embedding.Model = "embeddinggemma"
		}
		if cfg.Embedding.BatchSize == 0 {
			cfg.Embedding.BatchSize = 16
		}
		if cfg.Embedding.MaxParallel == 0 {
			cfg.Embedding.MaxParallel = 2
		}
		if cfg.Embedding.MaxRetries == 0 {
			cfg.Embedding.MaxRetries = 3
		}
	}
	if cfg.Ingestion.MaxInFlight == 0 {
		cfg.Ingestion.MaxInFlight = 4
	}
	if cfg.Ingestion.ChunkSize == 0 {
		cfg.Ingestion.ChunkSize = 1000
	}
	if cfg.Ingestion.ChunkOverlap == 0 {
		cfg.Ingestion.ChunkOverlap = 100
	}
	if cfg.Ingestion.MaxRetries == 0 {
		cfg.Ingestion.MaxRetries = 3
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
}
