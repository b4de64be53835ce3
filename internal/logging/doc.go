// Package logging assembles the structured slog loggers used across
// vinestore binaries.
//
// It owns the console/JSON handler plumbing, centralizes level and output
// selection, and exposes attr helpers plus a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits log lines with the same shape.
package logging
