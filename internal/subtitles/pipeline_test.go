package subtitles

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

// spokenWords turns sentences into transcript words, one token per word with
// a leading space on all but the first token of the transcript.
func spokenWords(start, step, pause float64, sentences ...string) []Word {
	var words []Word
	t := start
	for _, sentence := range sentences {
		for _, token := range strings.Fields(sentence) {
			text := token
			if len(words) > 0 {
				text = " " + token
			}
			words = append(words, Word{Text: text, Start: t, End: t + step, Kind: KindWord})
			t += step
		}
		t += pause
	}
	return words
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestNewPipelineRejectsBadSettings(t *testing.T) {
	settings := DefaultSettings()
	settings.MinDurationAbsolute = 2
	if _, err := NewPipeline(settings, nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRunEmptyInput(t *testing.T) {
	p := newTestPipeline(t)
	words := spokenWords(0, 0.5, 0.5, "hello there")

	if _, err := p.Run(context.Background(), Transcript{}, []string{"hello"}, Hooks{}); !errors.Is(err, ErrNoWords) {
		t.Fatalf("err = %v, want ErrNoWords", err)
	}
	if _, err := p.Run(context.Background(), Transcript{Words: words}, []string{" ", ""}, Hooks{}); !errors.Is(err, ErrNoFragments) {
		t.Fatalf("err = %v, want ErrNoFragments", err)
	}
}

func TestRunProducesTrack(t *testing.T) {
	sentences := []string{
		"Good morning everyone.",
		"Today we will talk about subtitles.",
		"Timing matters more than you think.",
	}
	transcript := Transcript{Words: spokenWords(0, 0.4, 0.8, sentences...)}

	var logs []string
	result, err := newTestPipeline(t).Run(context.Background(), transcript, sentences, Hooks{
		Log: func(msg string) { logs = append(logs, msg) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != StatusCompleted {
		t.Fatalf("status = %s", result.Status)
	}
	if len(result.Entries) != len(sentences) {
		t.Fatalf("got %d entries, want %d", len(result.Entries), len(sentences))
	}
	for i, e := range result.Entries {
		if e.Text != sentences[i] {
			t.Errorf("entry %d text = %q, want %q", i, e.Text, sentences[i])
		}
		if e.Index != i+1 {
			t.Errorf("entry %d index = %d", i, e.Index)
		}
	}
	if issues := ValidateEntries(result.Entries, DefaultSettings()); len(issues) != 0 {
		t.Fatalf("issues: %v", issues)
	}
	if result.Stats.Aligned != 3 || result.Stats.Entries != 3 {
		t.Fatalf("stats = %+v", result.Stats)
	}
	if len(logs) == 0 {
		t.Fatal("log hook never called")
	}
	if !strings.HasPrefix(result.SRT(), "1\n00:00:00,000 --> ") {
		t.Fatalf("srt = %q", result.SRT())
	}
}

func TestRunSkipsUnalignedFragment(t *testing.T) {
	sentences := []string{"First we wait.", "Then we leave together."}
	transcript := Transcript{Words: spokenWords(0, 0.4, 0.8, sentences...)}
	fragments := []string{sentences[0], "全く関係ない", sentences[1]}

	result, err := newTestPipeline(t).Run(context.Background(), transcript, fragments, Hooks{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Unaligned) != 1 || result.Unaligned[0] != "全く関係ない" {
		t.Fatalf("unaligned = %v", result.Unaligned)
	}
	if result.Stats.Unaligned != 1 || len(result.Entries) != 2 {
		t.Fatalf("stats = %+v entries = %d", result.Stats, len(result.Entries))
	}
	if result.Entries[1].Text != sentences[1] {
		t.Fatalf("second entry = %q; the miss should not move the cursor", result.Entries[1].Text)
	}
}

func TestRunKeepsLowConfidenceFragment(t *testing.T) {
	sentences := []string{
		"Good morning everyone.",
		"Today we will talk about subtitles.",
		"Timing matters more than you think.",
	}
	transcript := Transcript{Words: spokenWords(0, 0.4, 0.8, sentences...)}
	fragments := []string{sentences[0], "Today we shall discuss captions.", sentences[2]}

	result, err := newTestPipeline(t).Run(context.Background(), transcript, fragments, Hooks{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stats.LowConfidence != 1 || result.Stats.Aligned != 3 || result.Stats.Unaligned != 0 {
		t.Fatalf("stats = %+v", result.Stats)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(result.Entries))
	}
	weak := result.Entries[1]
	if weak.Text != fragments[1] {
		t.Fatalf("entry 2 text = %q", weak.Text)
	}
	if weak.Confidence <= 0 || weak.Confidence >= DefaultSimilarityThreshold {
		t.Fatalf("entry 2 confidence = %.3f, want below %.2f", weak.Confidence, DefaultSimilarityThreshold)
	}
	approx(t, "entry 2 start", weak.Start, 3*0.4+0.8)
	for _, i := range []int{0, 2} {
		if result.Entries[i].Confidence != 1 {
			t.Fatalf("entry %d confidence = %.3f, want 1", i+1, result.Entries[i].Confidence)
		}
	}
}

func TestRunLongAudioEventPassesValidation(t *testing.T) {
	words := spokenWords(0, 0.5, 0, "Hello there.")
	words = append(words, Word{Text: " (music)", Start: 2.5, End: 22.5, Kind: KindAudioEvent})
	transcript := Transcript{Words: words}

	result, err := newTestPipeline(t).Run(context.Background(), transcript, []string{"Hello there.", "(music)"}, Hooks{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(result.Entries))
	}
	music := result.Entries[1]
	if !music.IsAudioEvent() {
		t.Fatalf("entry 2 = %+v, want an audio event", music)
	}
	approx(t, "audio event length", music.Duration(), 20)
	if issues := ValidateEntries(result.Entries, DefaultSettings()); len(issues) != 0 {
		t.Fatalf("issues: %v", issues)
	}
}

func TestRunAllUnaligned(t *testing.T) {
	transcript := Transcript{Words: spokenWords(0, 0.4, 0.8, "plain english words")}
	result, err := newTestPipeline(t).Run(context.Background(), transcript, []string{"日本語だけ"}, Hooks{})
	if !errors.Is(err, ErrNoEntries) {
		t.Fatalf("err = %v, want ErrNoEntries", err)
	}
	if result == nil || result.Status != StatusFailed {
		t.Fatalf("result = %+v", result)
	}
}

func TestRunOversizedFragment(t *testing.T) {
	fragment := strings.TrimSpace(strings.Repeat("alphabet ", 9))
	transcript := Transcript{Words: spokenWords(0, 0.3, 0, fragment)}

	result, err := newTestPipeline(t).Run(context.Background(), transcript, []string{fragment}, Hooks{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("got %d entries", len(result.Entries))
	}
	entry := result.Entries[0]
	if !entry.Oversized || entry.Text != fragment {
		t.Fatalf("entry = %+v", entry)
	}
	if result.Stats.Split != 1 || result.Stats.Oversized != 1 {
		t.Fatalf("stats = %+v", result.Stats)
	}
}

func TestRunAudioEvent(t *testing.T) {
	words := spokenWords(0, 0.5, 0.6, "Welcome back.")
	words = append(words, Word{Text: " (applause)", Start: 1.6, End: 1.9, Kind: KindAudioEvent})
	words = append(words, spokenWords(5, 0.5, 0, "Thank you all.")...)

	fragments := []string{"Welcome back.", "(applause)", "Thank you all."}
	result, err := newTestPipeline(t).Run(context.Background(), Transcript{Words: words}, fragments, Hooks{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stats.AudioEvents != 1 {
		t.Fatalf("stats = %+v", result.Stats)
	}
	var found bool
	for _, e := range result.Entries {
		if e.Text == "(applause)" {
			found = true
		}
	}
	if !found {
		t.Fatalf("audio event entry missing: %+v", result.Entries)
	}
}

func TestEntriesForShortRunExtension(t *testing.T) {
	p := newTestPipeline(t)
	run := &runState{pipeline: p, logger: p.logger, result: &Result{}}
	words := []Word{{Text: "Yes.", Start: 3, End: 3.3}}

	entries := run.entriesFor("Yes.", Alignment{Words: words, Next: 1, Ratio: 1}, Splitter{Settings: p.settings})
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	// Extended toward the 1.2s target, capped 0.5s past the last word.
	approx(t, "end", entries[0].End, 3.8)

	words = []Word{{Text: "Okay.", Start: 3, End: 3.9}}
	entries = run.entriesFor("Okay.", Alignment{Words: words, Next: 1, Ratio: 1}, Splitter{Settings: p.settings})
	approx(t, "end", entries[0].End, 4.2)
}

func TestRunCancellation(t *testing.T) {
	sentences := []string{
		"The first sentence is here.",
		"The second sentence follows later.",
		"The third one closes the scene.",
	}
	transcript := Transcript{Words: spokenWords(0, 0.4, 1.5, sentences...)}

	t.Run("context cancelled up front", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := newTestPipeline(t).Run(ctx, transcript, sentences, Hooks{})
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("err = %v, want ErrCancelled", err)
		}
		if result.Status != StatusCancelled || len(result.Entries) != 0 {
			t.Fatalf("result = %+v", result)
		}
	})

	t.Run("during normalization", func(t *testing.T) {
		polls := 0
		// Three alignment polls and three merge steps precede normalization.
		hooks := Hooks{Cancelled: func() bool {
			polls++
			return polls >= 7
		}}
		result, err := newTestPipeline(t).Run(context.Background(), transcript, sentences, hooks)
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("err = %v, want ErrCancelled", err)
		}
		if len(result.Entries) != 1 || result.Entries[0].Index != 1 {
			t.Fatalf("entries = %+v", result.Entries)
		}
		if result.Stats.Entries != 1 {
			t.Fatalf("stats = %+v", result.Stats)
		}
	})
}

func TestRunProgressIsMonotonic(t *testing.T) {
	sentences := []string{"One small step.", "Another small step.", "A final small step."}
	transcript := Transcript{Words: spokenWords(0, 0.4, 1.0, sentences...)}

	for _, tt := range []struct {
		name           string
		offset, span   int
		wantLo, wantHi int
	}{
		{"full range", 0, 0, 0, 100},
		{"upper half", 50, 50, 50, 100},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var seen []int
			hooks := Hooks{
				Progress:       func(p int) { seen = append(seen, p) },
				ProgressOffset: tt.offset,
				ProgressSpan:   tt.span,
			}
			if _, err := newTestPipeline(t).Run(context.Background(), transcript, sentences, hooks); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(seen) == 0 || seen[len(seen)-1] != tt.wantHi {
				t.Fatalf("progress = %v, want to end at %d", seen, tt.wantHi)
			}
			for i, p := range seen {
				if p < tt.wantLo || p > tt.wantHi {
					t.Fatalf("progress %d outside [%d,%d]", p, tt.wantLo, tt.wantHi)
				}
				if i > 0 && p <= seen[i-1] {
					t.Fatalf("progress not increasing: %v", seen)
				}
			}
		})
	}
}

func TestRunRandomTranscripts(t *testing.T) {
	settings := DefaultSettings()
	for seed := int64(1); seed <= 20; seed++ {
		faker := gofakeit.New(seed)
		var sentences []string
		for i := 0; i < faker.IntRange(3, 12); i++ {
			sentences = append(sentences, faker.Sentence(faker.IntRange(1, 18)))
		}

		var words []Word
		at := faker.Float64Range(0, 2)
		for _, sentence := range sentences {
			for _, token := range strings.Fields(sentence) {
				text := token
				if len(words) > 0 {
					text = " " + token
				}
				length := faker.Float64Range(0.1, 0.7)
				words = append(words, Word{Text: text, Start: at, End: at + length, Kind: KindWord})
				at += length + faker.Float64Range(0, 0.4)
			}
			at += faker.Float64Range(0, 1.5)
		}

		result, err := newTestPipeline(t).Run(context.Background(), Transcript{Words: words}, sentences, Hooks{})
		if err != nil {
			t.Fatalf("seed %d: Run: %v", seed, err)
		}
		for i, e := range result.Entries {
			if e.Index != i+1 {
				t.Fatalf("seed %d: entry %d has index %d", seed, i, e.Index)
			}
			if e.End <= e.Start {
				t.Fatalf("seed %d: entry %d has non-positive duration", seed, e.Index)
			}
			if strings.ContainsAny(e.Text, "\n\r") || e.Text != strings.Join(strings.Fields(e.Text), " ") {
				t.Fatalf("seed %d: entry %d text not collapsed: %q", seed, e.Index, e.Text)
			}
			if i == 0 {
				continue
			}
			prev := result.Entries[i-1]
			if e.Start < prev.Start {
				t.Fatalf("seed %d: entry %d starts before entry %d", seed, e.Index, prev.Index)
			}
			if e.Start < prev.End-1e-9 {
				t.Fatalf("seed %d: entry %d overlaps entry %d", seed, e.Index, prev.Index)
			}
			if !e.Oversized && !e.IsAudioEvent() && e.Duration() > settings.MaxDuration+1e-9 {
				t.Fatalf("seed %d: entry %d exceeds max duration", seed, e.Index)
			}
		}
	}
}
