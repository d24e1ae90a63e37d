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

// Validate checks that a Grant is structurally sound for storage.
// Embeddings are optional here; grants without embeddings are simply
// invisible to similarity retrieval.
func (g *Grant) Validate() error {
	if g.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidGrant, ErrEmptyGrantID)
	}
	if g.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidGrant, ErrEmptyGrantTitle)
	}
	if !g.OpensAt.IsZero() && !g.ClosesAt.IsZero() && g.ClosesAt.Before(g.OpensAt) {
		return fmt.Errorf("%w: closing date precedes opening date", ErrInvalidGrant)
	}
	return nil
}

// Validate checks that a Query can drive a match request.
func (q Query) Validate() error {
	if q.IsEmpty() {
		return ErrEmptyQuery
	}
	switch q.Category {
	case "", CategoryAll, CategoryPublic, CategoryPrivate:
		return nil
	default:
		return fmt.Errorf("unknown category %q", q.Category)
	}
}

// Validate checks the pipeline invariant that every published score lies
// in [0, 1].
func (m GrantMatch) Validate() error {
	if m.GrantId == "" {
		return ErrEmptyGrantID
	}
	if m.Score < 0 || m.Score > 1 {
		return fmt.Errorf("%w: %f", ErrScoreOutOfRange, m.Score)
	}
	return nil
}
