// Package logging assembles the slog loggers used by guidregen.
//
// It owns the console and JSON handlers, maps configuration onto levels and
// output destinations, and tags log lines with the run identifier and phase
// carried on a context. NewNop gives tests and optional wiring a logger that
// discards everything.
package logging
