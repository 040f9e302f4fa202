// Package mutation applies user actions optimistically and reconciles them
// with server truth.
//
// An [Overlay] holds per-entity values that win over server data while a
// mutation is in flight. [BlockToggler] is the block/unblock flow built on it:
// set the overlay, call the API, then either refetch both user lists or restore
// the pre-call value and record a row-scoped error.
//
// # What this package must NOT do
//
//   - touch rows other than the one being mutated
//   - start a second mutation for an entity that already has one in flight
//   - surface 401 failures as row errors (they are handled globally)
package mutation
