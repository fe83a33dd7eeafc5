package subtitles

import (
	"regexp"
	"strings"
)

type boundaryClass int

const (
	boundaryNone boundaryClass = iota
	boundaryFinal
	boundaryEllipsis
	boundaryComma
)

// Ellipsis marks are tested first: "..." also ends with a full stop.
var (
	ellipsisMarks = []string{"...", "…", "‥"}
	finalMarks    = []string{".", "?", "!", "。", "？", "！", "．"}
	commaMarks    = []string{",", "、", "，"}
)

// classifyBoundary reports which kind of break a word's trailing punctuation offers.
func classifyBoundary(text string) boundaryClass {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return boundaryNone
	}
	switch {
	case hasAnySuffix(trimmed, ellipsisMarks):
		return boundaryEllipsis
	case hasAnySuffix(trimmed, finalMarks):
		return boundaryFinal
	case hasAnySuffix(trimmed, commaMarks):
		return boundaryComma
	}
	return boundaryNone
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

var bracketedEvent = regexp.MustCompile(`^\(.*\)$|^（.*）$`)

// IsAudioEvent reports whether every word is blank, tagged as an audio event,
// or a whole-token parenthesized annotation such as "(laughter)".
// An empty run is not an audio event.
func IsAudioEvent(words []Word) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		trimmed := strings.TrimSpace(w.Text)
		if trimmed == "" || w.Kind == KindAudioEvent || bracketedEvent.MatchString(trimmed) {
			continue
		}
		return false
	}
	return true
}
