// Package service contains the application use cases. It orchestrates the
// domain types, the scoring engine and the analytics engine over the store
// interfaces defined in internal/store.
//
// StudyService is the single write path: it starts sessions and completes
// them, folding answers into card outcomes and user stats inside one
// transaction. Reads go through the analytics engine.
//
// Services receive their dependencies through constructor injection and
// never depend on a specific store implementation.
package service
