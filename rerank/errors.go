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


package rerank

import "errors"

var (
	// ErrRerankUnavailable is returned only after every configured backend
	// model has failed. Callers are expected to fall through to the
	// per-candidate scoring path.
	ErrRerankUnavailable = errors.New("all rerank backends failed")

	// ErrTruncatedResponse indicates a response cut off mid-array. Partial
	// parses are never attempted; the next backend is tried instead.
	ErrTruncatedResponse = errors.New("response appears truncated")

	// ErrMalformedResponse indicates a response that parsed as JSON but did
	// not fit any accepted shape.
	ErrMalformedResponse = errors.New("malformed rerank response")

	// ErrChatModelRequired indicates that a chat model was not provided.
	ErrChatModelRequired = errors.New("chat model is required")

	// ErrNoModelsConfigured indicates an empty backend model list.
	ErrNoModelsConfigured = errors.New("at least one rerank model is required")
)
