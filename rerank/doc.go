// Package rerank implements second-pass LLM scoring of the similarity
// shortlist.
//
// LLM output is structurally unreliable, so resilience is the core design:
// an ordered chain of backend models is tried sequentially, responses are
// accepted in several shapes (flat array, wrapped object, legacy tuples),
// truncated output is rejected rather than partially parsed, and
// hallucinated candidate IDs are skipped instead of failing the attempt.
// Only when every backend fails does the caller see an error.
package rerank
