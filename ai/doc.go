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


// Package ai defines provider-neutral interfaces for the AI services that
// the matching pipeline depends on: text embedding and chat completion.
//
// # Design
//
// The package deliberately separates the interface contracts from their
// implementations:
//
//   - ai (this package): interfaces, request types, and configuration
//   - ai/openai: production implementations backed by OpenAI-compatible APIs
//   - ai/mock: test doubles with injectable behavior
//
// Backend identity is a per-request property (TextRequest.Model) rather than
// a per-client one, so a single ChatModel can serve the reranker's ordered
// fallback chain without constructing one client per backend.
//
// # Usage
//
//	cfg := ai.NewConfig(ai.WithAPIKey(key))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "solar panel research")
//
// # Thread Safety
//
// All services returned by an AIProvider are safe for concurrent use.
package ai
