package subtitles

import (
	"math"
	"testing"
)

// timedWords lays texts out back to back, each lasting step seconds.
func timedWords(start, step float64, texts ...string) []Word {
	words := make([]Word, 0, len(texts))
	t := start
	for _, text := range texts {
		words = append(words, Word{Text: text, Start: t, End: t + step, Kind: KindWord})
		t += step
	}
	return words
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s = %.6f, want %.6f", name, got, want)
	}
}
