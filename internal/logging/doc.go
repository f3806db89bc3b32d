// Package logging assembles structured slog loggers and formatting helpers used
// across mkvsubs.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the stage and the per-request correlation ID. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
