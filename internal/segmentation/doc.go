// Package segmentation produces the text fragments the subtitle pipeline
// aligns against a transcript.
//
// Fragments come either from a plain text file (one per line) or from an
// LLM: the transcript text is cut into chunks, each chunk is sent with a
// language-specific instruction, and every non-blank reply line becomes a
// fragment.
package segmentation
