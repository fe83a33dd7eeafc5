// Package textutil provides text helpers shared by the alignment engine and
// the CLI: a character-level sequence similarity ratio, whitespace handling,
// term-frequency fingerprints and filename sanitization.
//
// SequenceRatio is the score the aligner ranks candidate word runs by. It
// works on runes so CJK text scores the same way as Latin text.
//
// Fingerprints and CosineSimilarity give a coarse, order-insensitive
// coverage estimate between a transcript and the subtitles built from it.
package textutil
