// Package rank implements first-pass vector similarity retrieval for grants.
//
// Raw cosine similarity over real-world embeddings occupies a narrow,
// query-dependent band, so scores are amplified and then rescaled per
// request: the best match is pinned to a dynamic ceiling derived from its
// own quality, and every other score is transposed relative to it. A flat
// domestic-source boost and a floor/top-K selection produce the shortlist
// handed to the reranking stage.
//
// The stage is pure: no I/O, no errors for malformed candidate data.
package rank
