// Package logging provides structured logging helpers built on log/slog.
//
// It defines the attribute vocabulary used across the codebase so that log
// fields stay consistent and greppable, plus small constructors that reduce
// repetition at call sites.
//
// Calendar IDs are email addresses and therefore PII; Calendar() logs a
// truncated hash instead of the raw ID so log entries can still be
// correlated per calendar.
package logging
