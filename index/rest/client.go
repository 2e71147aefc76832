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


package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/index"
)

const defaultTimeout = 30 * time.Second

// Config holds connection settings for a remote search service.
type Config struct {
	// BaseURL is the service root, e.g. "https://search.internal:8443".
	BaseURL string

	// APIKey authenticates requests when set.
	APIKey string

	// Timeout bounds each HTTP request. Default: 30s.
	Timeout time.Duration
}

// Client talks to a remote search service that supports hybrid ranking.
// Documents are upserted by ID, so repeated writes of the same chunk IDs
// overwrite instead of duplicating.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

var _ index.Index = (*Client)(nil)

// NewClient creates a client for the search service at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rest index: BaseURL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "rest-index"),
	}, nil
}

type document struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	SourcePage   string    `json:"source_page"`
	SourceURL    string    `json:"source_url,omitempty"`
	AccessLabels []string  `json:"access_labels,omitempty"`
	Vector       []float32 `json:"vector,omitempty"`
}

type upsertRequest struct {
	Documents []document `json:"documents"`
}

type upsertResponse struct {
	Results []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	} `json:"results"`
}

// Upsert writes records into the named index. Per-document rejections from
// the service surface as a *index.PartialWriteError with the failed IDs.
func (c *Client) Upsert(ctx context.Context, indexName string, records []index.Record) (int, error) {
	if indexName == "" {
		return 0, index.ErrIndexNameRequired
	}
	if len(records) == 0 {
		return 0, nil
	}

	req := upsertRequest{Documents: make([]document, 0, len(records))}
	for _, record := range records {
		req.Documents = append(req.Documents, document{
			ID:           record.ID,
			Content:      record.Content,
			SourcePage:   record.SourcePage,
			SourceURL:    record.SourceURL,
			AccessLabels: record.AccessLabels,
			Vector:       record.Vector,
		})
	}

	data, err := c.doRequest(ctx, http.MethodPut, "/v1/indexes/"+indexName+"/documents", req)
	if err != nil {
		return 0, err
	}

	var parsed upsertResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return 0, fmt.Errorf("decode upsert response: %w", err)
	}

	written := 0
	var failed []string
	for _, result := range parsed.Results {
		if result.Status == "failed" {
			c.logger.Warn("document rejected", "index", indexName, "id", result.ID, "err", result.Error)
			failed = append(failed, result.ID)
			continue
		}
		written++
	}
	if len(failed) > 0 {
		return written, &index.PartialWriteError{Written: written, FailedIDs: failed}
	}
	return written, nil
}

type searchRequest struct {
	Query string `json:"query"`
	Top   int    `json:"top"`
	Mode  string `json:"mode"`
}

type searchResponse struct {
	Results []struct {
		ID         string  `json:"id"`
		Content    string  `json:"content"`
		SourcePage string  `json:"source_page"`
		Score      float64 `json:"score"`
	} `json:"results"`
}

// Query returns up to topK hits for the query, best first. If the service
// reports the ranking mode as unsupported the error is
// index.ErrRankingUnavailable.
func (c *Client) Query(ctx context.Context, indexName string, query string, topK int, mode index.RankingMode) ([]index.Hit, error) {
	if indexName == "" {
		return nil, index.ErrIndexNameRequired
	}
	if query == "" {
		return nil, index.ErrQueryRequired
	}
	if topK <= 0 {
		topK = 10
	}

	req := searchRequest{Query: query, Top: topK, Mode: string(mode)}
	data, err := c.doRequest(ctx, http.MethodPost, "/v1/indexes/"+indexName+"/search", req)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]index.Hit, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		hits = append(hits, index.Hit{
			ID:         result.ID,
			Content:    result.Content,
			SourcePage: result.SourcePage,
			Score:      result.Score,
		})
	}
	return hits, nil
}

// Close is a no-op for the HTTP client.
func (c *Client) Close() error {
	return nil
}

// doRequest executes one HTTP call and classifies failures: connection
// errors, 429 and 5xx responses are transient, 501 means the requested
// ranking mode is not provisioned on the service.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.Transient(fmt.Errorf("search service request: %w", err))
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode == http.StatusNotImplemented:
		return nil, index.ErrRankingUnavailable
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, core.Transient(fmt.Errorf("search service status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	default:
		return nil, fmt.Errorf("search service status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
}
