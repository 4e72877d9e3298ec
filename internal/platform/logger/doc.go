// Package logger sets up the JSON slog logger and carries request-scoped
// loggers and trace IDs through contexts.
package logger
