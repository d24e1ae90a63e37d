// Package match orchestrates the end-to-end grant matching pipeline.
//
// A request flows embed -> similarity rank -> LLM rerank, with a
// per-candidate fallback chain (cached score, single LLM call, lexical
// text scorer) whenever the batch rerank cannot cover a candidate. Every
// shortlisted grant receives exactly one final score, tagged with the
// method that produced it. Only query embedding failure aborts a request;
// everything downstream degrades instead of failing.
package match
