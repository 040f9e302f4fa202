// Package resources binds the Perks API reads to the query cache.
//
// Every fetcher builds a [query.Key] from the resource name and the full set of
// parameters that change the answer, so two screens asking the same question
// share one cache entry and one network call. Fetchers whose inputs cannot
// produce an answer (an empty user id, a year compared with itself) return a
// NotApplicable result without touching the network.
//
// # Architecture boundaries
//
// Resource names are the invalidation vocabulary shared with the mutation
// package: a successful block toggle refetches [Users] and [BlockedUsers];
// creating a notification invalidates [Notifications].
package resources
