// Package listctl holds the state behind every paginated, searchable list:
// page, page size, search text and extra filters, kept in step with URL query
// parameters and with the query cache key.
//
// # Architecture boundaries
//
// A [Schema] is the only place that knows parameter names and defaults. A
// [Debounced] value separates what the operator is typing from what the cache
// key sees. A [Controller] ties the two together and reports changes through
// callbacks; it never performs I/O itself.
package listctl
