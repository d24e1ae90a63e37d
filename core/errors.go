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

// Domain errors
var (
	// ErrEmbeddingUnavailable indicates the query embedding could not be
	// generated. This is fatal for a match request: there is no sensible
	// fallback without a query vector.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrInvalidGrant indicates a Grant failed validation.
	ErrInvalidGrant = errors.New("invalid grant")

	// ErrEmptyGrantID indicates the grant Id field is empty.
	ErrEmptyGrantID = errors.New("grant id cannot be empty")

	// ErrEmptyGrantTitle indicates the grant Title field is empty.
	ErrEmptyGrantTitle = errors.New("grant title cannot be empty")

	// ErrEmptyQuery indicates the query text is empty after normalization.
	ErrEmptyQuery = errors.New("query text cannot be empty")

	// ErrScoreOutOfRange indicates a relevance score outside [0, 1].
	ErrScoreOutOfRange = errors.New("score out of range")
)
