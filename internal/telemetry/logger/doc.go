// Package logger provides structured logging for snapshot-merger.
//
//   - logger.go: slog handler setup, global level, default logger
//   - context.go: context-carried logger and run id
//   - abbrev.go: abbreviation of large byte attributes
//
// Storage packages take a plain *slog.Logger; use Slog to hand one over.
package logger
