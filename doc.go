// Package perksAdmin is the client-side runtime of the Perks admin console: an
// authenticated REST client, a persisted session, a stale-while-revalidate
// resource cache, URL-backed list state and optimistic mutations.
//
// A [Console] is assembled with [New] and [Builder.Build], started with
// [Console.Init] and stopped with [Console.Dispose]. Console methods are safe
// to call from multiple goroutines after Init.
//
// # Architecture boundaries
//
// perksAdmin is the public surface. It exposes [Console], [Builder], [Config],
// [Metrics] and the notification types. The transport lives in api/, the
// session state machine in session/, durable key/value backends in storage/,
// caching in query/ and resources/, list state in listctl/ and optimistic
// updates in mutation/. Notification delivery lives under internal/.
//
// # What this package must NOT do
//
//   - Keep module-level mutable state; two consoles in one process are
//     independent.
//   - Perform I/O in [Builder.Build]. Rehydration happens in Init and never
//     calls the network.
//   - Decide a token is invalid locally. Only a 401 from the server ends a
//     session.
package perksAdmin
