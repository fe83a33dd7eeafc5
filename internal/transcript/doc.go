// Package transcript converts speech recognition output from several vendors
// into the word list the subtitle pipeline aligns against.
//
// Supported inputs are ElevenLabs Scribe, Whisper/WhisperX, Deepgram and
// AssemblyAI JSON. Format "auto" picks the vendor from the document shape.
// Every adapter yields words sorted by start time with End >= Start, blank
// tokens tagged as spacing, and a language normalized to its base code.
package transcript
