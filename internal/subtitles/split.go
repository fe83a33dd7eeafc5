package subtitles

import (
	"log/slog"
	"math"
	"unicode/utf8"

	"jimaku/internal/logging"
	"jimaku/internal/textutil"
)

// Splitter breaks an over-limit word run into entries that respect the
// duration and width limits, falling back to one oversized entry when no
// punctuation boundary allows a legal cut.
type Splitter struct {
	Settings Settings
	Logger   *slog.Logger
}

// Split returns the entries for words. Entry text is the concatenated word
// text with whitespace collapsed; Confidence is left for the caller.
func (s Splitter) Split(words []Word) []Entry {
	remaining := trimBlankEdges(words)
	var entries []Entry
	for len(remaining) > 0 {
		text := pieceText(remaining)
		chars := utf8.RuneCountInString(text)
		start := remaining[0].Start
		end := remaining[len(remaining)-1].End

		if end-start <= s.Settings.MaxDuration && chars <= s.Settings.MaxCharsPerLine {
			entries = append(entries, s.legalize(remaining, text, false))
			break
		}

		cut := s.chooseCut(remaining, chars)
		if cut < 0 {
			entry := s.legalize(remaining, text, true)
			logging.WarnWithContext(s.Logger, "no legal split point; keeping oversized entry", "split_oversized",
				logging.String("text", textutil.Truncate(text, 50)),
				logging.Float64("duration_seconds", entry.Duration()),
				logging.Int("chars", entry.Chars()),
				logging.String(logging.FieldErrorHint, "add punctuation to the fragment or raise max_duration/max_chars_per_line"),
				logging.String(logging.FieldImpact, "entry exceeds configured limits"),
			)
			entries = append(entries, entry)
			break
		}

		n := cut + 1
		head := remaining[:n:n]
		entries = append(entries, s.legalize(head, pieceText(head), false))
		remaining = trimBlankEdges(remaining[n:])
	}
	return entries
}

// chooseCut returns the index of the word that should end the first piece,
// or -1. Only interior words are considered, and only those in the highest
// punctuation class present. A candidate is usable when the first piece is
// at least the soft minimum long and itself within both hard limits.
func (s Splitter) chooseCut(words []Word, totalChars int) int {
	buckets := map[boundaryClass][]int{}
	for i := 1; i < len(words)-1; i++ {
		if class := classifyBoundary(words[i].Text); class != boundaryNone {
			buckets[class] = append(buckets[class], i)
		}
	}
	var candidates []int
	for _, class := range []boundaryClass{boundaryFinal, boundaryEllipsis, boundaryComma} {
		if len(buckets[class]) > 0 {
			candidates = buckets[class]
			break
		}
	}

	half := float64(totalChars) / 2
	best, bestDistance := -1, math.Inf(1)
	for _, idx := range candidates {
		head := words[:idx+1]
		duration := head[idx].End - head[0].Start
		chars := utf8.RuneCountInString(pieceText(head))
		if duration < s.Settings.MinDurationTarget || duration > s.Settings.MaxDuration || chars > s.Settings.MaxCharsPerLine {
			continue
		}
		if distance := math.Abs(float64(chars) - half); distance < bestDistance {
			best, bestDistance = idx, distance
		}
	}
	return best
}

// legalize builds an entry spanning words, extending its end to the soft
// minimum but never moving it before the last word's end.
func (s Splitter) legalize(words []Word, text string, oversized bool) Entry {
	start := words[0].Start
	end := words[len(words)-1].End
	end = max(end, start+s.Settings.MinDurationTarget, start+s.Settings.MinDurationAbsolute, start+epsilon)
	return Entry{
		Start:     start,
		End:       end,
		Text:      text,
		Words:     words,
		Oversized: oversized,
	}
}

func pieceText(words []Word) string {
	return textutil.CollapseWhitespace(joinWords(words))
}
