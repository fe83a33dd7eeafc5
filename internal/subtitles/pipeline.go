package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"unicode/utf8"

	"jimaku/internal/logging"
	"jimaku/internal/textutil"
)

var (
	// ErrNoWords is returned when the transcript has no words to align against.
	ErrNoWords = errors.New("transcript has no words")
	// ErrNoFragments is returned when no non-blank fragment was supplied.
	ErrNoFragments = errors.New("no text fragments supplied")
	// ErrNoEntries is returned when every fragment failed to align.
	ErrNoEntries = errors.New("no subtitle entries could be aligned")
	// ErrCancelled is returned with a partial Result when the run was stopped.
	ErrCancelled = errors.New("subtitle generation cancelled")
)

// Phase weights of the overall progress, in percent.
const (
	weightAlign     = 40
	weightMerge     = 30
	weightNormalize = 30
)

// Status is the terminal state of a pipeline run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Hooks connects a run to its caller. Every member is optional.
type Hooks struct {
	// Progress receives a non-decreasing overall percentage.
	Progress func(percent int)
	// Log receives human-readable progress lines.
	Log func(message string)
	// Cancelled is polled between fragments and between merge and
	// normalization steps.
	Cancelled func() bool
	// ProgressOffset and ProgressSpan map the run onto a slice of a larger
	// progress bar. A zero span means the whole 0..100 range.
	ProgressOffset int
	ProgressSpan   int
}

// Stats summarizes what happened during a run.
type Stats struct {
	Fragments     int `json:"fragments"`
	Aligned       int `json:"aligned"`
	Unaligned     int `json:"unaligned"`
	LowConfidence int `json:"low_confidence"`
	Split         int `json:"split"`
	AudioEvents   int `json:"audio_events"`
	Merged        int `json:"merged"`
	Oversized     int `json:"oversized"`
	Truncated     int `json:"truncated"`
	Entries       int `json:"entries"`
}

// Result is the output of a pipeline run. When Status is StatusCancelled,
// Entries holds only the entries that finished normalization.
type Result struct {
	Entries   []Entry  `json:"entries"`
	Status    Status   `json:"status"`
	Stats     Stats    `json:"stats"`
	Unaligned []string `json:"unaligned,omitempty"`
}

// SRT renders the result entries.
func (r *Result) SRT() string {
	if r == nil {
		return ""
	}
	return Render(r.Entries)
}

// Pipeline aligns fragments to a transcript and produces subtitle entries.
// A Pipeline holds no per-run state and may be reused.
type Pipeline struct {
	settings Settings
	logger   *slog.Logger
}

// NewPipeline validates settings and returns a pipeline. A nil logger discards output.
func NewPipeline(settings Settings, logger *slog.Logger) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("subtitle settings: %w", err)
	}
	return &Pipeline{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "subtitles"),
	}, nil
}

// Settings returns the limits the pipeline enforces.
func (p *Pipeline) Settings() Settings {
	return p.settings
}

// Run executes alignment, merging and normalization. Empty input returns
// ErrNoWords or ErrNoFragments without a result. Cancellation through ctx or
// hooks.Cancelled returns ErrCancelled together with a partial result.
func (p *Pipeline) Run(ctx context.Context, transcript Transcript, fragments []string, hooks Hooks) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(transcript.Words) == 0 {
		return nil, ErrNoWords
	}
	if countNonBlank(fragments) == 0 {
		return nil, ErrNoFragments
	}

	run := &runState{
		pipeline: p,
		ctx:      ctx,
		hooks:    hooks,
		logger:   logging.WithContext(ctx, p.logger),
		progress: newProgressReporter(hooks),
		result:   &Result{Status: StatusCompleted},
	}
	run.result.Stats.Fragments = len(fragments)

	intermediate, ok := run.align(transcript.Words, fragments)
	if !ok {
		return run.cancel("alignment")
	}
	if len(intermediate) == 0 {
		run.result.Status = StatusFailed
		run.logger.Error("no fragment could be aligned",
			logging.String(logging.FieldEventType, "alignment_failed"),
			logging.Int("fragments", len(fragments)),
			logging.String(logging.FieldErrorHint, "check that the fragments come from this transcript"),
		)
		return run.result, ErrNoEntries
	}

	merged, mergeCount, ok := mergePass(intermediate, p.settings, run.stepper(weightAlign, weightMerge))
	run.result.Stats.Merged = mergeCount
	if !ok {
		return run.cancel("merge")
	}
	run.note("merge pass produced entries", logging.Int("entries", len(merged)), logging.Int("merged", mergeCount))

	final, truncated, ok := normalizePass(merged, p.settings, run.logger, run.stepper(weightAlign+weightMerge, weightNormalize))
	run.result.Entries = final
	run.result.Stats.Truncated = truncated
	run.tally()
	if !ok {
		return run.cancel("normalize")
	}

	run.progress.finish()
	run.note("subtitle track ready",
		logging.Int("entries", len(final)),
		logging.Int("unaligned", run.result.Stats.Unaligned),
		logging.Int("oversized", run.result.Stats.Oversized),
	)
	return run.result, nil
}

type runState struct {
	pipeline *Pipeline
	ctx      context.Context
	hooks    Hooks
	logger   *slog.Logger
	progress *progressReporter
	result   *Result
}

func (r *runState) cancelled() bool {
	if r.ctx.Err() != nil {
		return true
	}
	return r.hooks.Cancelled != nil && r.hooks.Cancelled()
}

func (r *runState) cancel(phase string) (*Result, error) {
	r.result.Status = StatusCancelled
	r.tally()
	r.logger.Info("subtitle generation cancelled",
		logging.String(logging.FieldPhase, phase),
		logging.Int("entries_kept", len(r.result.Entries)),
	)
	r.emit(fmt.Sprintf("cancelled during %s", phase))
	return r.result, ErrCancelled
}

// note logs at info level and forwards the message to the Log hook.
func (r *runState) note(msg string, attrs ...logging.Attr) {
	r.logger.Info(msg, logging.Args(attrs...)...)
	r.emit(msg)
}

func (r *runState) emit(msg string) {
	if r.hooks.Log != nil {
		r.hooks.Log(msg)
	}
}

// stepper returns a step callback that reports progress inside one phase
// and stops the phase once cancellation is requested.
func (r *runState) stepper(base, weight int) func(done, total int) bool {
	return func(done, total int) bool {
		r.progress.phase(base, weight, done, total)
		return !r.cancelled()
	}
}

func (r *runState) tally() {
	stats := &r.result.Stats
	stats.Entries = len(r.result.Entries)
	stats.Oversized = 0
	for _, e := range r.result.Entries {
		if e.Oversized {
			stats.Oversized++
		}
	}
}

// align maps every fragment onto the transcript. It returns false when
// cancelled; the entries gathered so far are discarded in that case.
func (r *runState) align(words []Word, fragments []string) ([]Entry, bool) {
	settings := r.pipeline.settings
	splitter := Splitter{Settings: settings, Logger: r.logger}
	var entries []Entry
	cursor := 0

	r.note("aligning fragments", logging.Int("fragments", len(fragments)), logging.Int("words", len(words)))
	for i, fragment := range fragments {
		if r.cancelled() {
			return nil, false
		}
		alignment := Align(fragment, words, cursor)
		if !alignment.Matched() {
			r.unaligned(fragment, cursor)
			r.progress.phase(0, weightAlign, i+1, len(fragments))
			continue
		}
		cursor = alignment.Next

		produced := r.entriesFor(fragment, alignment, splitter)
		if len(produced) == 0 {
			r.unaligned(fragment, alignment.Start)
		} else {
			r.result.Stats.Aligned++
			if alignment.Ratio < settings.SimilarityThreshold {
				r.result.Stats.LowConfidence++
				logging.WarnWithContext(r.logger, "low confidence alignment", "alignment_low_confidence",
					logging.String("fragment", textutil.Truncate(fragment, 50)),
					logging.String("matched", textutil.Truncate(joinWords(alignment.Words), 50)),
					logging.Float64("ratio", alignment.Ratio),
					logging.Float64("threshold", settings.SimilarityThreshold),
					logging.String(logging.FieldErrorHint, "compare the fragment with the transcript text"),
					logging.String(logging.FieldImpact, "subtitle timing may be off for this line"),
				)
			}
			entries = append(entries, produced...)
		}
		r.progress.phase(0, weightAlign, i+1, len(fragments))
	}

	if len(r.result.Unaligned) > 0 {
		r.emit(fmt.Sprintf("%d fragment(s) could not be aligned and were skipped", len(r.result.Unaligned)))
		for n, fragment := range r.result.Unaligned {
			r.emit(fmt.Sprintf("- fragment %d: %q", n+1, fragment))
		}
	}

	sort.SliceStable(entries, func(a, b int) bool { return entries[a].Start < entries[b].Start })
	return entries, true
}

func (r *runState) unaligned(fragment string, cursor int) {
	r.result.Stats.Unaligned++
	r.result.Unaligned = append(r.result.Unaligned, fragment)
	logging.WarnWithContext(r.logger, "fragment could not be aligned; skipping", "fragment_unaligned",
		logging.String("fragment", textutil.Truncate(fragment, 50)),
		logging.Int("cursor", cursor),
		logging.String(logging.FieldErrorHint, "the fragment text does not appear near this point of the transcript"),
		logging.String(logging.FieldImpact, "line missing from the subtitle track"),
	)
}

// entriesFor turns one alignment into intermediate entries. Blank edge
// tokens are ignored for timing. Audio events keep their own token text;
// over-limit runs are split; short runs are extended a little past their
// last word.
func (r *runState) entriesFor(fragment string, alignment Alignment, splitter Splitter) []Entry {
	settings := r.pipeline.settings
	words := trimBlankEdges(alignment.Words)
	if len(words) == 0 {
		words = alignment.Words
	}
	start := words[0].Start
	end := words[len(words)-1].End
	duration := max(epsilon, end-start)
	text := textutil.CollapseWhitespace(fragment)

	switch {
	case IsAudioEvent(words):
		text = pieceText(words)
		if text == "" {
			return nil
		}
		r.result.Stats.AudioEvents++
		return []Entry{{
			Start:      start,
			End:        max(end, start+settings.MinDurationAbsolute, start+epsilon),
			Text:       text,
			Words:      words,
			Confidence: alignment.Ratio,
		}}

	case duration > settings.MaxDuration || utf8.RuneCountInString(text) > settings.MaxCharsPerLine:
		attrs := logging.DecisionAttrs("fragment_split", "split", splitReason(duration, text, settings))
		attrs = append(attrs,
			logging.String("fragment", textutil.Truncate(text, 50)),
			logging.Float64("duration_seconds", duration),
			logging.Int("chars", utf8.RuneCountInString(text)),
		)
		r.logger.Debug("splitting over-limit fragment", logging.Args(attrs...)...)
		r.result.Stats.Split++
		pieces := splitter.Split(words)
		for i := range pieces {
			pieces[i].Confidence = alignment.Ratio
		}
		return pieces

	case duration < settings.MinDurationTarget:
		target := min(start+settings.MinDurationTarget, end+settings.ShortEntryMaxExtension)
		return []Entry{{
			Start:      start,
			End:        max(target, end, start+epsilon),
			Text:       text,
			Words:      words,
			Confidence: alignment.Ratio,
		}}

	default:
		return []Entry{{
			Start:      start,
			End:        end,
			Text:       text,
			Words:      words,
			Confidence: alignment.Ratio,
		}}
	}
}

func splitReason(duration float64, text string, s Settings) string {
	if duration > s.MaxDuration {
		return "duration above max_duration"
	}
	return "text wider than max_chars_per_line"
}

func countNonBlank(fragments []string) int {
	n := 0
	for _, f := range fragments {
		if !textutil.IsBlank(f) {
			n++
		}
	}
	return n
}
