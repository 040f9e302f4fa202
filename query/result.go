package query

import "time"

// Result is what a fetch hands back to the caller.
type Result[T any] struct {
	Data    T
	HasData bool
	// Err is the last fetch error for the key. It may be set alongside Data
	// when a refresh failed after an earlier success.
	Err       error
	FetchedAt time.Time
	IsStale   bool
	// NotApplicable marks a query whose inputs cannot produce a result; no
	// request was made.
	NotApplicable bool
}

// NotApplicable returns the result for a disabled query.
func NotApplicable[T any]() Result[T] {
	return Result[T]{NotApplicable: true}
}
