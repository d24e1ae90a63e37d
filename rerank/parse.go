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

import (
	"encoding/json"
	"fmt"
	"strings"
)

// entry is one (simplifiedID, refinedScore) pair recovered from a backend
// response. Scores are on the 0-100 scale at this point.
type entry struct {
	ID    int
	Score float64
}

// wrapperKeys are conventional object keys different models wrap their
// array under, tried in order before falling back to the first array-valued
// property.
var wrapperKeys = []string{"results", "evaluations", "grants"}

// parseScores extracts (id, score) pairs from a raw LLM response.
//
// Accepted shapes: a flat array [id, score, id, score, ...], the same
// array wrapped in an object, a flat 3-tuple form [id, score, reason, ...],
// or an array of [id, score, ...] sub-arrays. Markdown code fences are
// stripped first. A response that does not end in a closing bracket is
// rejected as truncated rather than partially parsed.
func parseScores(raw string) ([]entry, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	if !strings.HasSuffix(text, "]") && !strings.HasSuffix(text, "}") {
		return nil, ErrTruncatedResponse
	}

	elements, err := decodeArray(text)
	if err != nil {
		// Try to repair common JSON issues before giving up.
		elements, err = decodeArray(repairJSON(text))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	return pairUp(elements)
}

// decodeArray finds the score array in text, unwrapping a single object
// layer when present.
func decodeArray(text string) ([]json.RawMessage, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elements); err == nil {
		return elements, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &wrapper); err != nil {
		return nil, err
	}

	for _, key := range wrapperKeys {
		if inner, ok := wrapper[key]; ok {
			if err := json.Unmarshal(inner, &elements); err == nil {
				return elements, nil
			}
		}
	}

	// Any array-valued property as a last resort.
	for _, inner := range wrapper {
		if err := json.Unmarshal(inner, &elements); err == nil {
			return elements, nil
		}
	}

	return nil, fmt.Errorf("no array found in object response")
}

// pairUp walks decoded elements into (id, score) pairs. Three flat layouts
// are handled: strictly numeric pairs, numeric pairs each followed by a
// string reason, and nested per-item arrays.
func pairUp(elements []json.RawMessage) ([]entry, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrMalformedResponse)
	}

	// Nested form: every element is itself an [id, score, ...] array.
	if isArray(elements[0]) {
		entries := make([]entry, 0, len(elements))
		for _, element := range elements {
			var tuple []float64
			if err := json.Unmarshal(element, &tuple); err != nil || len(tuple) < 2 {
				return nil, fmt.Errorf("%w: bad tuple %s", ErrMalformedResponse, element)
			}
			entries = append(entries, entry{ID: int(tuple[0]), Score: tuple[1]})
		}
		return entries, nil
	}

	stride, err := detectStride(elements)
	if err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(elements)/stride)
	for i := 0; i+1 < len(elements); i += stride {
		var id, score float64
		if err := json.Unmarshal(elements[i], &id); err != nil {
			return nil, fmt.Errorf("%w: non-numeric id %s", ErrMalformedResponse, elements[i])
		}
		if err := json.Unmarshal(elements[i+1], &score); err != nil {
			return nil, fmt.Errorf("%w: non-numeric score %s", ErrMalformedResponse, elements[i+1])
		}
		entries = append(entries, entry{ID: int(id), Score: score})
	}
	return entries, nil
}

// detectStride distinguishes the [id, score, ...] layout from the legacy
// [id, score, reason, ...] layout. An element count that fits neither is
// treated as a truncated response.
func detectStride(elements []json.RawMessage) (int, error) {
	if len(elements)%3 == 0 && isString(elements[2]) {
		return 3, nil
	}
	if len(elements)%2 == 0 {
		return 2, nil
	}
	return 0, ErrTruncatedResponse
}

func isArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}

func isString(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, `"`)
}
