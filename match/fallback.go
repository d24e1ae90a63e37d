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

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/poiesic/grantmatch/core"
	"github.com/poiesic/grantmatch/lexical"
)

// scoreFallback scores candidates one at a time when the batch rerank is
// unavailable: cached score first, then a single LLM call, then the
// deterministic lexical scorer. Candidates are processed in small
// fixed-size batches with a short delay between batches to respect
// third-party rate limits; within a batch, calls run concurrently.
//
// Every candidate receives exactly one match, tagged with the method that
// produced its score.
func (m *Matcher) scoreFallback(ctx context.Context, query core.Query, grants []*core.Grant) []core.GrantMatch {
	matches := make([]core.GrantMatch, len(grants))

	batchSize := m.cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 0; start < len(grants); start += batchSize {
		if start > 0 {
			// Inter-batch delay, abandoned on cancellation.
			timer := time.NewTimer(m.cfg.BatchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}

		end := start + batchSize
		if end > len(grants) {
			end = len(grants)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			wg.Add(1)
			task := func() {
				defer wg.Done()
				matches[i] = m.scoreOne(ctx, query, grants[i])
			}
			if err := m.pool.Submit(task); err != nil {
				// Pool unavailable; degrade to inline execution.
				task()
			}
		}
		wg.Wait()

		if ctx.Err() != nil && start+batchSize < len(grants) {
			// Caller abandoned the request: score the rest without
			// further LLM calls.
			for i := end; i < len(grants); i++ {
				matches[i] = m.lexicalMatch(query, grants[i])
			}
			break
		}
	}

	return matches
}

// scoreOne resolves a single candidate through the cache, the scoring
// model, and finally the lexical scorer.
func (m *Matcher) scoreOne(ctx context.Context, query core.Query, grant *core.Grant) core.GrantMatch {
	if score, ok := m.cache.Get(query, grant.Id); ok {
		m.monitor.CacheHit(grant.Id, score)
		return core.GrantMatch{
			GrantId: grant.Id,
			Score:   core.ClampScore(float64(score) / 100),
			Reasons: []string{fmt.Sprintf("Cached AI analysis: %d/100", score)},
			Method:  core.MethodCacheHit,
		}
	}

	if ctx.Err() == nil {
		score, err := m.scoreSingle(ctx, query, grant)
		if err == nil {
			m.cache.Put(query, grant.Id, score)
			m.monitor.ScoredByLLM(grant.Id, score)
			return core.GrantMatch{
				GrantId: grant.Id,
				Score:   core.ClampScore(float64(score) / 100),
				Reasons: []string{fmt.Sprintf("AI relevance score: %d/100", score)},
				Method:  core.MethodLLM,
			}
		}
		m.logger.Warn("single-candidate scoring failed, using text fallback",
			"grant", grant.Id,
			"err", err)
	}

	return m.lexicalMatch(query, grant)
}

// lexicalMatch scores a candidate with the deterministic text scorer.
func (m *Matcher) lexicalMatch(query core.Query, grant *core.Grant) core.GrantMatch {
	score := lexical.Score(query.NormalizedText(), grant)
	m.monitor.ScoredByFallback(grant.Id, score)
	return core.GrantMatch{
		GrantId: grant.Id,
		Score:   core.ClampScore(score),
		Reasons: []string{fmt.Sprintf("Semantic text matching: %d/100", int(math.Round(score*100)))},
		Method:  core.MethodLLMFallbackText,
	}
}
