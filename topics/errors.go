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


package topics

import "errors"

var (
	// ErrNoTopics is returned when the topic table is empty.
	ErrNoTopics = errors.New("at least one topic is required")

	// ErrEmptyTopic is returned when a table entry has an empty topic key.
	ErrEmptyTopic = errors.New("topic must not be empty")

	// ErrEmptyIndexName is returned when a topic maps to an empty index name.
	ErrEmptyIndexName = errors.New("index name must not be empty")
)
