// Package logging assembles structured slog loggers and formatting helpers used
// across talkscout.
//
// It owns the console and JSON handlers, routes records to stderr and the
// persistent log file, and exposes context-aware helpers so pipeline code tags
// log lines with run IDs, stages, and video URLs automatically. A no-op logger
// is provided for tests and wiring code that cannot fail.
package logging
