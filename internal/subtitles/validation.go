package subtitles

import (
	"fmt"
	"strings"
)

// tolerance absorbs millisecond rounding when checking rendered timings.
const tolerance = 0.0015

// ValidateEntries checks finished entries against s and returns one line per
// problem found. An empty result means the track is well formed.
func ValidateEntries(entries []Entry, s Settings) []string {
	if len(entries) == 0 {
		return []string{"empty_subtitle_track"}
	}
	var issues []string
	gap := s.Gap()
	for i, e := range entries {
		if e.Index != i+1 {
			issues = append(issues, fmt.Sprintf("index_gap: cue %d has index %d", i+1, e.Index))
		}
		if e.End <= e.Start {
			issues = append(issues, fmt.Sprintf("non_positive_duration: cue %d", e.Index))
		}
		if strings.ContainsAny(e.Text, "\r\n") {
			issues = append(issues, fmt.Sprintf("multi_line_text: cue %d", e.Index))
		}
		if strings.TrimSpace(e.Text) == "" {
			issues = append(issues, fmt.Sprintf("empty_text: cue %d", e.Index))
		}
		if !e.Oversized {
			if !audioCue(e) && e.Duration() > s.MaxDuration+tolerance {
				issues = append(issues, fmt.Sprintf("too_long: cue %d lasts %.3fs", e.Index, e.Duration()))
			}
			if e.Chars() > s.MaxCharsPerLine {
				issues = append(issues, fmt.Sprintf("too_wide: cue %d has %d chars", e.Index, e.Chars()))
			}
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		switch {
		case e.Start < prev.Start:
			issues = append(issues, fmt.Sprintf("out_of_order: cue %d starts before cue %d", e.Index, prev.Index))
		case e.Start < prev.End-tolerance:
			issues = append(issues, fmt.Sprintf("overlap: cue %d starts %.3fs before cue %d ends", e.Index, prev.End-e.Start, prev.Index))
		case e.Start-prev.End < gap-tolerance && e.Start-prev.End > tolerance:
			issues = append(issues, fmt.Sprintf("short_gap: %.3fs between cues %d and %d", e.Start-prev.End, prev.Index, e.Index))
		}
	}
	return issues
}

// audioCue reports whether e is an audio event. Audio events keep their
// full length, so the duration ceiling does not apply to them. Parsed SRT
// cues carry no words and are judged by their text alone.
func audioCue(e Entry) bool {
	if len(e.Words) == 0 {
		return bracketedEvent.MatchString(strings.TrimSpace(e.Text))
	}
	return e.IsAudioEvent()
}

// ValidateSRTContent parses content and validates the cues it contains.
// Oversized flags are not stored in SRT, so width and length problems are
// reported for every cue. Bracketed audio events are exempt from the length
// check only.
func ValidateSRTContent(content string, s Settings) []string {
	entries := Parse(content)
	if len(entries) == 0 {
		return []string{"empty_subtitle_file"}
	}
	return ValidateEntries(entries, s)
}
