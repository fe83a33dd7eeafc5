// Package services holds the helpers shared by the pipeline and its external
// integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and pipeline phases for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed, rejected, cancelled).
//
// The llm subpackage talks to OpenAI-compatible chat completion endpoints.
package services
