package transcript

import (
	"fmt"
	"math"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"

	"jimaku/internal/language"
	"jimaku/internal/services"
	"jimaku/internal/subtitles"
)

// Load reads path and parses it with format, which may be FormatAuto.
// It returns the transcript and the format actually used.
func Load(path string, format Format) (subtitles.Transcript, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return subtitles.Transcript{}, "", services.Wrap(services.ErrNotFound, "transcript", "read", path, err)
	}
	return Parse(data, format)
}

// Parse converts vendor JSON into a transcript. A document without any
// words is rejected.
func Parse(data []byte, format Format) (subtitles.Transcript, Format, error) {
	if format == "" || format == FormatAuto {
		detected, err := Detect(data)
		if err != nil {
			return subtitles.Transcript{}, "", services.Wrap(services.ErrValidation, "transcript", "detect format", "", err)
		}
		format = detected
	}

	var (
		t   subtitles.Transcript
		err error
	)
	switch format {
	case FormatElevenLabs:
		t, err = parseElevenLabs(data)
	case FormatWhisper:
		t, err = parseWhisper(data)
	case FormatDeepgram:
		t, err = parseDeepgram(data)
	case FormatAssemblyAI:
		t, err = parseAssemblyAI(data)
	default:
		return subtitles.Transcript{}, "", services.Wrap(services.ErrValidation, "transcript", "parse", string(format), ErrUnknownFormat)
	}
	if err != nil {
		return subtitles.Transcript{}, format, services.Wrap(services.ErrValidation, "transcript", "parse", string(format), err)
	}

	t = normalize(t)
	if len(t.Words) == 0 {
		return t, format, services.Wrap(services.ErrValidation, "transcript", "parse", string(format), subtitles.ErrNoWords)
	}
	return t, format, nil
}

// normalize repairs timing, tags blank tokens and sorts words by start.
func normalize(t subtitles.Transcript) subtitles.Transcript {
	words := make([]subtitles.Word, 0, len(t.Words))
	for _, w := range t.Words {
		if w.Text == "" || math.IsNaN(w.Start) || math.IsNaN(w.End) {
			continue
		}
		w.Start = max(w.Start, 0)
		w.End = max(w.End, w.Start)
		if w.Kind == "" {
			w.Kind = subtitles.KindWord
		}
		if w.IsBlank() && w.Kind == subtitles.KindWord {
			w.Kind = subtitles.KindSpacing
		}
		words = append(words, w)
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].Start < words[j].Start })
	t.Words = words
	t.Language = language.Normalize(t.Language)
	return t
}

// unspacedLanguages are written without spaces between words.
var unspacedLanguages = map[string]bool{
	"ja": true, "zh": true, "yue": true, "th": true, "lo": true, "my": true, "km": true,
}

// spaceWords prefixes a space to every word after the first for vendors
// that return bare tokens, unless the language is written without spaces.
func spaceWords(words []subtitles.Word, lang string) []subtitles.Word {
	if unspacedLanguages[language.Normalize(lang)] {
		return words
	}
	for i := 1; i < len(words); i++ {
		if isSpaced(words[i].Text) && !startsWithSpace(words[i].Text) {
			words[i].Text = " " + words[i].Text
		}
	}
	return words
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

// isSpaced reports whether a token belongs to a script that separates words
// with spaces. Han, kana, Thai and punctuation-only tokens are joined
// without one.
func isSpaced(s string) bool {
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Han, r), unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r), unicode.Is(unicode.Thai, r):
			return false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return true
		}
	}
	return false
}

// Describe is a one-line summary for logs and CLI output.
func Describe(t subtitles.Transcript, format Format) string {
	var duration float64
	if n := len(t.Words); n > 0 {
		duration = t.Words[n-1].End - t.Words[0].Start
	}
	return fmt.Sprintf("%s transcript, %d words, %.1fs, language %s", format, len(t.Words), duration, language.DisplayName(t.Language))
}
