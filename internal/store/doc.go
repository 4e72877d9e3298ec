// Package store defines the persistence boundary of the service.
// EventStore is the adapter the analytics and scoring core reads history
// through; implementations live under internal/platform.
package store
