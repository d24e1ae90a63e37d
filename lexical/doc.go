// Package lexical implements the deterministic, network-free fallback
// scorer used when every LLM scoring path is unavailable.
//
// Scores come from fuzzy token matching between the query and the grant's
// concatenated text fields, with typo tolerance via edit distance and a
// bonus for curated bilingual domain terms. Output is confined to a
// deliberate uncertainty band (0.20-0.95): a text heuristic should not
// imitate the confidence of an LLM judgment.
package lexical
