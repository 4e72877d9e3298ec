// Package analytics derives a learning report from a user's study history:
// summary statistics, rule-based insights, trend classification, study
// patterns, predictions, recommendations and comparisons.
//
// All computations are pure functions of the loaded history and the clock.
// Engine is the only entry point that performs I/O, through store.EventStore.
package analytics
