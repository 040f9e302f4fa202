// Package storage provides the durable client-side key/value storage that backs
// the console session and the password-reset handoff.
//
// # Backends
//
//   - [Memory]: process-local map, used by tests and ephemeral consoles.
//   - [File]: one JSON document on disk, used by the CLI so a sign-in survives
//     between invocations.
//   - [Redis]: shared Redis keyspace, for consoles that run as several processes
//     behind one operator identity.
//
// # Architecture boundaries
//
// This package stores opaque strings under fixed keys. Interpreting the token
// and the user profile, and deciding when a session is valid, belong to the
// session store.
//
// # What this package must NOT do
//
//   - Import perksAdmin, session, or api (no upward imports).
//   - Log stored values (they include bearer tokens).
package storage
