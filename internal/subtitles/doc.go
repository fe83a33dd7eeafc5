// Package subtitles turns a word-timed transcript and a list of sentence
// fragments into a finished subtitle track.
//
// The pipeline runs in three phases over an in-memory entry list:
//
//   - Alignment: each fragment is fuzzily matched to a contiguous run of
//     transcript words starting at a forward-only cursor. Runs that are too
//     long or too wide go through the Splitter; runs that are too short are
//     extended a little past their last word.
//   - Merge: adjacent short entries are coalesced in a single pass.
//   - Normalize: gaps are enforced by trimming the previous entry, minimum
//     and maximum durations are applied, and 1-based indices are assigned.
//
// The package performs no I/O. Progress, log lines and cancellation travel
// through Hooks and the context passed to Pipeline.Run. Render and Parse
// convert between entries and SRT text.
package subtitles
