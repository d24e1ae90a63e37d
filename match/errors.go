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


package match

import "errors"

var (
	// ErrGrantRepositoryRequired indicates the grant repository dependency was not provided.
	ErrGrantRepositoryRequired = errors.New("grant repository is required")

	// ErrAIProviderRequired indicates the AI provider dependency was not provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrRerankerRequired indicates the reranker dependency was not provided.
	ErrRerankerRequired = errors.New("reranker is required")

	// ErrInvalidMaxAttempts indicates a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrScoreNotFound indicates no number could be extracted from a
	// single-candidate scoring response.
	ErrScoreNotFound = errors.New("no score found in response")
)
