// Package session owns the authenticated console session: who is signed in,
// with which bearer token, and whether a sign-in is in progress.
//
// # Lifecycle
//
//	ANONYMOUS ──BeginSignIn──▶ AUTHENTICATING ──SignInSuccess──▶ AUTHENTICATED
//	    ▲                              │                               │
//	    └────────SignInFailure─────────┘◀──────SignOut / Expire────────┘
//
// A fresh [Store] reports IsLoading until [Store.Rehydrate] settles it, so route
// guards never redirect before the persisted session has been read.
//
// Rehydration trusts durable storage: a persisted token and user yield an
// authenticated session with no network round-trip. The first API call that
// answers 401 proves otherwise and calls [Store.Expire].
//
// # Architecture boundaries
//
// This package owns session state and its persistence format. It does NOT issue
// HTTP requests itself; sign-out receives the logout call as a function.
//
// # What this package must NOT do
//
//   - Import perksAdmin or api (no upward imports).
//   - Validate the token against the server during rehydration.
//   - Return an error from Rehydrate.
package session
