// Package services defines shared utilities consumed by the media pipeline and
// the CLI that hosts it.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and per-request correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that let callers tell
//     recoverable outcomes (not found, validation) from subprocess failures
//     (external tool, timeout, output limit).
//
// Use these helpers when wiring new pipeline code so error classification and
// observability stay uniform.
package services
