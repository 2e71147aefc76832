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

import "fmt"

// ValidateSourceFile validates a SourceFile before ingestion.
//
// Validation rules:
//   - Name must not be empty
//   - Content must not be empty
//
// NOT validated (populated later in the pipeline):
//   - URL (assigned after the durable upload completes)
//   - AccessLabels (an empty set is valid and means globally readable)
func ValidateSourceFile(file *SourceFile) error {
	if file == nil {
		return fmt.Errorf("source file is nil: %w", ErrEmptyFile)
	}
	if file.Name == "" {
		return ErrEmptyFileName
	}
	if len(file.Content) == 0 {
		return fmt.Errorf("%s: %w", file.Name, ErrEmptyFile)
	}
	return nil
}
