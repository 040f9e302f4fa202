// Package forms validates operator input before any network call.
//
// Each form is a struct with validator/v10 tags. [Validate] returns
// [ValidationErrors], a field-to-message map using the console's wording, or
// nil. Nothing in this package talks to the API.
package forms
