// Package logging assembles the structured slog loggers used across
// imagemill.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so batch code tags log lines with
// item IDs and components consistently. A no-op logger is provided for tests
// and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
