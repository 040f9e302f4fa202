// Package jwt inspects bearer tokens issued by the Perks API without verifying
// their signature.
//
// The console never holds the signing key. It reads the registered claims only
// to show when a session will lapse and to recognise a password-reset token
// that has already expired.
//
// # What this package must NOT do
//
//   - Reject a sign-in session because its token looks expired. The server is the
//     authority; a 401 is the only signal that ends a session.
//   - Import any other perksAdmin package.
package jwt
