package segmentation

import (
	"strings"
	"testing"
)

func TestSplitChunksPreferences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{"fits", "short text", 100, []string{"short text"}},
		{"blank", " \n\t ", 100, nil},
		{"paragraph", "aaaa\n\nbbbb\ncc", 10, []string{"aaaa\n\n", "bbbb\ncc"}},
		{"line", "aaaa\nbbbbbbbbbb", 10, []string{"aaaa\n", "bbbbbbbbbb"}},
		{"space", "aaaa bbbbbbbbbb", 10, []string{"aaaa ", "bbbbbbbbbb"}},
		{"hard cut", "abcdefghijkl", 5, []string{"abcde", "fghij", "kl"}},
		{"whitespace chunk dropped", "aaaa\n\n   \n\nbbbb", 6, []string{"aaaa\n\n", "bbbb"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitChunks(tt.text, tt.maxChars)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Fatalf("SplitChunks = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitChunksSentenceTerminator(t *testing.T) {
	// No line breaks: the cut lands after the last "。" inside the window.
	text := strings.Repeat("あ", 150) + "。" + strings.Repeat("い", 40) + "。" + strings.Repeat("う", 100)
	chunks := SplitChunks(text, 200)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "い。") {
		t.Fatalf("first chunk should end at the last terminator, got ...%q", string([]rune(chunks[0])[len([]rune(chunks[0]))-5:]))
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks do not reassemble the text")
	}
}

func TestSplitChunksBoundsAndReassembly(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	chunks := SplitChunks(text, DefaultMaxChunkChars)
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > DefaultMaxChunkChars {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks do not reassemble the text")
	}
}
