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


package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/ingestion"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to run against the topic's documents"`
	Topic string `json:"topic" jsonschema:"the topic whose documents to search"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Result string `json:"result"`
}

// UploadInput is the input schema for the upload tool.
type UploadInput struct {
	FilePath     string   `json:"file_path" jsonschema:"path of the local file to upload and index"`
	Topic        string   `json:"topic" jsonschema:"the topic to index the document under"`
	AccessLabels []string `json:"access_labels,omitempty" jsonschema:"optional access labels restricting who can see the document"`
}

// UploadOutput is the output schema for the upload tool.
type UploadOutput struct {
	Result string `json:"result"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documentation",
		Description: "Search the indexed documentation for a topic and return cited excerpts",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Upload a local document and index it under a topic so it becomes searchable",
	}, s.handleUpload)
}

// handleSearch handles the search tool invocation. Failures are reported as
// text so agent callers always receive a readable answer.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	return nil, SearchOutput{Result: s.search(ctx, input)}, nil
}

func (s *Server) search(ctx context.Context, input SearchInput) string {
	text, err := s.engine.SearchFormatted(ctx, core.Topic(input.Topic), input.Query)
	if err != nil {
		if errors.Is(err, core.ErrUnknownTopic) {
			return s.unknownTopicMessage(input.Topic)
		}
		return "Error: " + err.Error()
	}
	// No matches is an empty string, not an error or a notice.
	return text
}

// handleUpload handles the upload tool invocation.
func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	return nil, UploadOutput{Result: s.upload(ctx, input)}, nil
}

func (s *Server) upload(ctx context.Context, input UploadInput) string {
	data, err := os.ReadFile(input.FilePath)
	if err != nil {
		return "Error: " + err.Error()
	}
	fileName := filepath.Base(input.FilePath)

	result, err := s.engine.Ingest(ctx, core.Topic(input.Topic), fileName, data, input.AccessLabels...)
	if err != nil {
		if errors.Is(err, core.ErrUnknownTopic) {
			return s.unknownTopicMessage(input.Topic)
		}
		var stage *ingestion.StageError
		if errors.As(err, &stage) {
			return fmt.Sprintf("Error: ingestion failed at the %s stage: %v", stage.Stage, stage.Err)
		}
		return "Error: " + err.Error()
	}

	return fmt.Sprintf("File %s uploaded and indexed successfully into topic %q (%d chunks).",
		result.File, input.Topic, result.Written)
}

func (s *Server) unknownTopicMessage(topic string) string {
	topics := s.engine.Topics()
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = string(t)
	}
	return fmt.Sprintf("Error: unknown topic %q. Valid topics: %s.", topic, strings.Join(names, ", "))
}
