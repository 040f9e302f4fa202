// Package api is the HTTP client for the Perks REST API.
//
// Every request carries the bearer token found in durable storage and a fresh
// X-Request-ID. A 401 from any endpoint is handled globally: the persisted
// session keys are removed and the configured [UnauthorizedHandler] runs (the
// console uses it to expire the session and send the operator back to sign-in).
// Callers still receive an [*Error] of kind [KindUnauthorized] and should stop,
// but never show it inline; see [IsUnauthorized].
//
// All other failures are normalized into [*Error]. The server's JSON "message"
// is passed through verbatim; transport failures and timeouts collapse into a
// generic retry message.
//
// # Architecture boundaries
//
// This package owns request construction, authentication headers and error
// normalization. It does NOT cache responses (see query) and does NOT hold the
// session state machine (see session).
//
// # What this package must NOT do
//
//   - Import perksAdmin, session, query or resources.
//   - Log request or response bodies (they carry credentials and tokens).
package api
