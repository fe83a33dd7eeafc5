// Package history records every subtitle conversion in a small SQLite
// database so past runs can be listed and inspected from the CLI.
//
// Each run stores its inputs, output path, final status and the pipeline
// counters. Schema changes bump the version in schema.go; users delete the
// database to adopt the new schema.
package history
