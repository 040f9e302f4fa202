// Package middleware exposes route guards that gate HTTP handlers on the
// console session.
//
// # Guards
//
//   - [Guard]: the common form, parameterised by a predicate and a redirect target.
//   - [RequireAuth]: lets signed-in operators through, sends others to the sign-in page.
//   - [RequireAnonymous]: keeps signed-in operators away from the sign-in pages.
//
// While the session is still loading a guard renders only its loading handler.
// Once the session settles, a failing predicate produces exactly one redirect and
// no child content.
//
// # Architecture boundaries
//
// Guards read session state; they never change it and never call the API.
//
// # What this package must NOT do
//
//   - Inspect or validate tokens (the session store owns that).
//   - Render child content for a request it redirects.
package middleware
