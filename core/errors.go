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


package core

import "errors"

// Configuration errors. These are fatal: they are surfaced immediately and
// never retried.
var (
	// ErrUnknownTopic indicates a topic with no configured index.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrDimensionMismatch indicates an embedding vector whose dimension does
	// not match the index's configured vector dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidMaxAttempts indicates a retry call with a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)

// Input errors. The input itself is the problem, so these are reported with
// the specific cause and never retried.
var (
	// ErrEmptyFile indicates a source file with no content.
	ErrEmptyFile = errors.New("file is empty")

	// ErrEmptyFileName indicates a source file without a name.
	ErrEmptyFileName = errors.New("file name is required")

	// ErrUnsupportedFormat indicates a file whose format has no extractor
	// variant. Reported to the caller rather than mis-parsed by a default.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// transientError marks a temporary backend failure (timeout, rate limit,
// momentary unavailability) as eligible for retry.
type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return "transient: " + e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

// Transient wraps err to mark it as a temporary backend failure that a call
// site may retry with backoff. Wrapping nil returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err is marked as a temporary backend failure.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
