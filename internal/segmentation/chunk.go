package segmentation

import "strings"

// DefaultMaxChunkChars bounds one LLM request, in runes.
const DefaultMaxChunkChars = 2800

// sentenceTerminators end a sentence when no line break is available.
const sentenceTerminators = "。．.！!？?"

// SplitChunks cuts text into pieces of at most maxChars runes. Each cut is
// placed, in order of preference, after a paragraph break, after a line
// break, after the last sentence terminator in the final max(100, 20%) runes
// of the window, after a space, or at the window edge. Chunks keep their
// original characters; whitespace-only chunks are dropped.
func SplitChunks(text string, maxChars int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	runes := []rune(text)
	var chunks []string
	for pos := 0; pos < len(runes); {
		end := min(pos+maxChars, len(runes))
		cut := end
		if end < len(runes) {
			cut = chooseChunkEnd(runes, pos, end, maxChars)
		}
		if chunk := string(runes[pos:cut]); strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		pos = cut
	}
	return chunks
}

func chooseChunkEnd(runes []rune, pos, end, maxChars int) int {
	if i := lastIndex(runes, pos, end, "\n\n"); i > pos {
		return i + 2
	}
	if i := lastIndex(runes, pos, end, "\n"); i > pos {
		return i + 1
	}
	window := max(100, maxChars/5)
	best := -1
	for i := max(pos, end-window); i < end; i++ {
		if strings.ContainsRune(sentenceTerminators, runes[i]) && i+1 > pos {
			best = i + 1
		}
	}
	if best > 0 {
		return best
	}
	if i := lastIndex(runes, pos, end, " "); i > pos {
		return i + 1
	}
	return end
}

// lastIndex returns the start of the last occurrence of sep lying entirely
// within runes[from:to], or -1.
func lastIndex(runes []rune, from, to int, sep string) int {
	pattern := []rune(sep)
	for i := to - len(pattern); i >= from; i-- {
		match := true
		for j, r := range pattern {
			if runes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
