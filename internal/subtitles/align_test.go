package subtitles

import (
	"strings"
	"testing"

	"jimaku/internal/textutil"
)

func TestAlignRoundTrip(t *testing.T) {
	words := []Word{
		{Text: "Hello", Start: 0, End: 0.4},
		{Text: " ", Start: 0.4, End: 0.45, Kind: KindSpacing},
		{Text: "world.", Start: 0.45, End: 0.9},
		{Text: " ", Start: 0.9, End: 1.0, Kind: KindSpacing},
		{Text: "How", Start: 1.0, End: 1.2},
		{Text: " ", Start: 1.2, End: 1.25, Kind: KindSpacing},
		{Text: "are", Start: 1.25, End: 1.4},
		{Text: " ", Start: 1.4, End: 1.45, Kind: KindSpacing},
		{Text: "you?", Start: 1.45, End: 1.8},
	}

	first := Align("Hello world.", words, 0)
	if !first.Matched() {
		t.Fatal("expected first fragment to match")
	}
	approx(t, "ratio", first.Ratio, 1)
	if first.Start != 0 || first.Next != 3 {
		t.Fatalf("first run = [%d,%d), want [0,3)", first.Start, first.Next)
	}

	second := Align("How are you?", words, first.Next)
	approx(t, "ratio", second.Ratio, 1)
	if second.Next != len(words) {
		t.Fatalf("second.Next = %d, want %d", second.Next, len(words))
	}
	got := textutil.StripWhitespace(joinWords(second.Words))
	if got != "Howareyou?" {
		t.Fatalf("matched text = %q", got)
	}
}

func TestAlignFullTextFragment(t *testing.T) {
	texts := strings.Fields("the quick brown fox jumps over the lazy dog")
	for i := 1; i < len(texts); i++ {
		texts[i] = " " + texts[i]
	}
	words := timedWords(0, 0.3, texts...)
	alignment := Align(joinWords(words), words, 0)
	approx(t, "ratio", alignment.Ratio, 1)
	if alignment.Start != 0 || alignment.Next != len(words) {
		t.Fatalf("run = [%d,%d), want whole transcript", alignment.Start, alignment.Next)
	}
}

func TestAlignMissKeepsCursor(t *testing.T) {
	words := timedWords(0, 0.3, "one", " two", " three")
	tests := []struct {
		name     string
		fragment string
		cursor   int
	}{
		{"no shared characters", "全く関係ない", 1},
		{"blank fragment", "   ", 0},
		{"cursor past end", "one", 3},
		{"negative cursor", "one", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Align(tt.fragment, words, tt.cursor)
			if got.Matched() {
				t.Fatalf("expected miss, got %+v", got)
			}
			if got.Next != tt.cursor || got.Ratio != 0 || len(got.Words) != 0 {
				t.Fatalf("miss = %+v, want Next=%d Ratio=0", got, tt.cursor)
			}
		})
	}
}

func TestAlignNeverMovesBackwards(t *testing.T) {
	words := timedWords(0, 0.3, "alpha", " beta", " gamma", " alpha", " beta")
	got := Align("alpha beta", words, 2)
	if got.Start < 2 {
		t.Fatalf("alignment started at %d, before cursor 2", got.Start)
	}
	if got.Start != 3 || got.Next != 5 {
		t.Fatalf("run = [%d,%d), want [3,5)", got.Start, got.Next)
	}
}

func TestAlignPartialMatchHasLowRatio(t *testing.T) {
	words := timedWords(0, 0.3, "I", " have", " a", " pen")
	got := Align("I have an apple", words, 0)
	if !got.Matched() {
		t.Fatal("expected a partial match")
	}
	if got.Ratio >= 0.98 || got.Ratio <= 0.01 {
		t.Fatalf("ratio = %.3f, want a partial score", got.Ratio)
	}
}
