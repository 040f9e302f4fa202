// Package password checks candidate passwords against the console's password
// policy before they are sent to the API.
//
// # Policy
//
// A new password must be at least [MinLength] bytes and contain an upper-case
// letter, a lower-case letter, a digit and one of [SpecialChars]. A change of
// password additionally needs the current password, a confirmation that
// matches, and a new value different from the current one.
//
// # Architecture boundaries
//
// This package owns the rules only. Field mapping and messages for forms live
// in the forms package; hashing and storage are the server's business.
//
// # What this package must NOT do
//
//   - Hash, store or log passwords.
//   - Import any other perksAdmin package.
package password
