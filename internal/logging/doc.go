// Package logging assembles the structured slog loggers used by jimaku.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag lines with the run ID and pipeline phase. A no-op
// logger is provided for tests and library callers that pass nil.
package logging
