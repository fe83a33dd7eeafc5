package subtitles

import (
	"strings"
	"unicode/utf8"
)

// WordKind tags how a transcript token should be treated.
type WordKind string

const (
	KindWord       WordKind = "word"
	KindSpacing    WordKind = "spacing"
	KindAudioEvent WordKind = "audio_event"
)

// Word is one timed token of a transcript. Text may carry surrounding
// whitespace and trailing punctuation exactly as the recognizer produced it.
type Word struct {
	Text      string   `json:"text"`
	Start     float64  `json:"start"`
	End       float64  `json:"end"`
	SpeakerID string   `json:"speaker_id,omitempty"`
	Kind      WordKind `json:"kind,omitempty"`
}

// IsBlank reports whether the word carries no visible text.
func (w Word) IsBlank() bool {
	return strings.TrimSpace(w.Text) == ""
}

// Transcript is the ordered word sequence of one recording.
type Transcript struct {
	Words    []Word `json:"words"`
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
}

// FullText returns Text, or the concatenated word text when Text is empty.
func (t Transcript) FullText() string {
	if strings.TrimSpace(t.Text) != "" {
		return t.Text
	}
	return joinWords(t.Words)
}

// Entry is one subtitle cue. Index is zero until the normalizer assigns it.
// Words is a read-only view of the transcript words the cue was built from.
type Entry struct {
	Index      int     `json:"index"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Words      []Word  `json:"-"`
	Confidence float64 `json:"confidence"`
	Oversized  bool    `json:"oversized,omitempty"`
}

// Duration returns End-Start in seconds.
func (e Entry) Duration() float64 {
	return e.End - e.Start
}

// Chars returns the number of runes in the entry text.
func (e Entry) Chars() int {
	return utf8.RuneCountInString(e.Text)
}

// IsAudioEvent reports whether the entry was built only from non-speech tokens.
func (e Entry) IsAudioEvent() bool {
	return IsAudioEvent(e.Words)
}

func joinWords(words []Word) string {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(w.Text)
	}
	return b.String()
}

// trimBlankEdges drops whitespace-only tokens from both ends of words so
// timing starts and ends on spoken content. The result shares the backing
// array but cannot be appended into it.
func trimBlankEdges(words []Word) []Word {
	first, last := 0, len(words)-1
	for first <= last && words[first].IsBlank() {
		first++
	}
	for last >= first && words[last].IsBlank() {
		last--
	}
	if first > last {
		return nil
	}
	return words[first : last+1 : last+1]
}
