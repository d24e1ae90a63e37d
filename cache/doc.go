// Package cache provides the relevance score cache consulted before any
// per-candidate LLM scoring call.
//
// Keys pair the normalized query text with a grant ID, matched exactly.
// The default cache is unbounded, mirroring process-lifetime semantics;
// WithMaxEntries adds FIFO eviction for deployments where query diversity
// would otherwise grow memory without limit.
package cache
