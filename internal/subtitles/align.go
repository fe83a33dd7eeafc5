package subtitles

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"jimaku/internal/textutil"
)

const (
	windowLengthFactor  = 3
	windowMinExtraWords = 20
	windowMaxExtraWords = 60
	growthExtraWords    = 30
	minUsefulRatio      = 0.01
	runawayRatio        = 0.95
	runawayLengthFactor = 1.8
	nearPerfectRatio    = 0.98
	ratioTieTolerance   = 1e-9
)

// Alignment is the outcome of matching one fragment against the transcript.
type Alignment struct {
	// Words is the matched run; empty when nothing matched.
	Words []Word
	// Start is the index of the first matched word.
	Start int
	// Next is the cursor for the following fragment. It equals the input
	// cursor when nothing matched.
	Next int
	// Ratio is the similarity of the matched run, 0 when nothing matched.
	Ratio float64
}

// Matched reports whether the fragment found a run.
func (a Alignment) Matched() bool {
	return len(a.Words) > 0 && a.Ratio > 0
}

// Align finds the contiguous run of words at or after cursor whose
// whitespace-free text best matches the whitespace-free fragment.
//
// Start positions are limited to a window of roughly three times the
// fragment length and each run grows at most the fragment length plus
// thirty words, which keeps the cost proportional to the fragment rather
// than the transcript. The cursor never moves backwards.
func Align(fragment string, words []Word, cursor int) Alignment {
	miss := Alignment{Start: cursor, Next: cursor}
	clean := []rune(textutil.StripWhitespace(fragment))
	if len(clean) == 0 || cursor < 0 || cursor >= len(words) {
		return miss
	}

	window := len(clean)*windowLengthFactor + clampInt(len(strings.Fields(fragment))*2, windowMinExtraWords, windowMaxExtraWords)
	outerEnd := min(cursor+window, len(words))

	bestRatio := 0.0
	bestStart, bestEnd, bestLen := -1, -1, 0

	built := make([]rune, 0, len(clean)*2)
	for i := cursor; i < outerEnd; i++ {
		built = built[:0]
		innerEnd := min(i+len(clean)+growthExtraWords, len(words))
		for j := i; j < innerEnd; j++ {
			built = appendStripped(built, words[j].Text)
			if len(built) == 0 {
				continue
			}
			ratio := textutil.RuneRatio(clean, built)

			better := ratio > bestRatio
			if !better && math.Abs(ratio-bestRatio) < ratioTieTolerance {
				if bestStart < 0 {
					better = true
				} else {
					better = absInt(len(built)-len(clean)) < absInt(bestLen-len(clean))
				}
			}
			if better && ratio > minUsefulRatio {
				bestRatio = ratio
				bestStart, bestEnd, bestLen = i, j+1, len(built)
			}

			if ratio > runawayRatio && float64(len(built)) > float64(len(clean))*runawayLengthFactor {
				break
			}
		}
		if bestRatio > nearPerfectRatio {
			break
		}
	}

	if bestStart < 0 {
		return miss
	}
	return Alignment{
		Words: words[bestStart:bestEnd:bestEnd],
		Start: bestStart,
		Next:  bestEnd,
		Ratio: bestRatio,
	}
}

func appendStripped(dst []rune, text string) []rune {
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		if unicode.IsSpace(r) {
			continue
		}
		dst = append(dst, r)
	}
	return dst
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
