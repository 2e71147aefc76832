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

import "errors"

var (
	// ErrExtractionFailed indicates that a recognized variant could not parse
	// the file's bytes. The input is the problem; the caller should not retry.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrNoText indicates that extraction succeeded but produced no text.
	ErrNoText = errors.New("no text extracted")

	// ErrRemoteURLRequired is returned when the remote extraction client is
	// constructed without a service URL.
	ErrRemoteURLRequired = errors.New("extraction service URL required")
)
