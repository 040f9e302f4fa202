// Package query is a keyed, generic result cache for remote reads.
//
// Each entry is addressed by a [Key] (resource name plus normalized
// parameters). Fresh entries are served without a network call, stale ones are
// served at once while a deduplicated background revalidation runs, and
// entries nobody reads for the GC window are evicted.
//
// # Architecture boundaries
//
// The cache knows nothing about HTTP or the Perks API. Callers pass a fetch
// function; the resources package supplies the typed ones. Retry policy is
// delegated to cenkalti/backoff and classification of retryable errors to the
// error's own Temporary method when it has one.
//
// # What this package must NOT do
//
//   - drop last good data because a later fetch failed
//   - apply a response older than one already applied for the same key
//   - keep goroutines running after [Client.Close]
package query
