// Package storage defines the grant persistence interface and the MUS
// binary serialization used by its implementations.
//
// The repository surface is deliberately read-heavy: grants are bulk-loaded
// by the seeder and then fetched fresh per match request, never mutated by
// the matching pipeline.
package storage
