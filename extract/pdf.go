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


package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/docdex/core"
)

// PDF parses a PDF locally and emits one section per page, preserving
// page-level provenance.
type PDF struct{}

var _ Extractor = (*PDF)(nil)

// NewPDF creates a local PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Extract returns one section per non-empty page, in page order.
// Malformed input is reported as ErrExtractionFailed; the parser is known to
// panic on some corrupt files, so panics are converted to the same error.
func (p *PDF) Extract(ctx context.Context, file *core.SourceFile) (sections []core.Section, err error) {
	defer func() {
		if r := recover(); r != nil {
			sections = nil
			err = fmt.Errorf("%w: %s: parser panic: %v", ErrExtractionFailed, file.Name, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(file.Content), int64(len(file.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, file.Name, err)
	}

	total := reader.NumPage()
	for pageNum := 1; pageNum <= total; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %v", ErrExtractionFailed, file.Name, pageNum, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sections = append(sections, core.Section{Text: text, Page: pageNum})
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("%s: %w", file.Name, ErrNoText)
	}
	return sections, nil
}
