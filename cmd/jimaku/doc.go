// Package main hosts the jimaku CLI entrypoint and command graph.
//
// The Cobra-based command tree loads a speech recognition transcript, obtains
// subtitle fragments from a file or an LLM, runs the alignment pipeline and
// writes an SRT file. Supporting commands inspect single alignments, validate
// SRT files, list the run history and scaffold configuration.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
