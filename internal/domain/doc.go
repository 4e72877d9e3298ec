// Package domain holds the study entities the scoring and analytics engines
// work on: sessions, per-card outcome records, lifetime user stats and
// learning goals. Constructors and mutators validate their invariants and
// report failures with the sentinel errors in errors.go.
package domain
