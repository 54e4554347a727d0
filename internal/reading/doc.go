// Package reading resolves per-book reading statuses and aggregates them
// into collection stats.
//
// Resolver wraps the status endpoints with soft-failure semantics: reads that
// fail are logged and come back empty, so a view never breaks because one
// book's status could not be loaded. SubmitStatusChange is the exception; it
// returns *ValidationError for rejected input and a wrapped error otherwise.
//
// Aggregator builds a Report from the user's bulk status events, keeping only
// the latest event per book. When that classifies nothing it falls back to a
// bounded, concurrent lookup of every book's current status.
package reading
