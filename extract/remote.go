package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/poiesic/docdex/core"
)

// Remote delegates extraction to a document-understanding HTTP service.
// It is used for paginated formats when the locally bundled parser is
// disabled by configuration. The call is a suspension point; the source file
// itself is never mutated.
type Remote struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Extractor = (*Remote)(nil)

// RemoteConfig configures the remote extraction client.
type RemoteConfig struct {
	// BaseURL is the service endpoint, e.g. "http://localhost:7100".
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Timeout bounds each extraction call. Default 60s.
	Timeout time.Duration
}

// NewRemote creates a remote extraction client.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.BaseURL == "" {
		return nil, ErrRemoteURLRequired
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Remote{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type remoteExtractRequest struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

type remoteExtractResponse struct {
	Sections []struct {
		Text string `json:"text"`
		Page int    `json:"page"`
	} `json:"sections"`
}

// Extract posts the file to the service's analyze endpoint and maps the
// response back to sections. Timeouts and 429/5xx responses are marked
// transient so the call site can retry; any other rejection means the input
// could not be parsed.
func (r *Remote) Extract(ctx context.Context, file *core.SourceFile) ([]core.Section, error) {
	payload, err := json.Marshal(remoteExtractRequest{Filename: file.Name, Content: file.Content})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, core.Transient(fmt.Errorf("extraction service: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, core.Transient(fmt.Errorf("extraction service returned %s", resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s: service returned %s: %s", ErrExtractionFailed, file.Name, resp.Status, bytes.TrimSpace(body))
	}

	var parsed remoteExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: decoding response: %v", ErrExtractionFailed, file.Name, err)
	}

	sections := make([]core.Section, 0, len(parsed.Sections))
	for _, s := range parsed.Sections {
		if s.Text == "" {
			continue
		}
		sections = append(sections, core.Section{Text: s.Text, Page: s.Page})
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%s: %w", file.Name, ErrNoText)
	}
	return sections, nil
}
