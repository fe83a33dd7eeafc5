package subtitles

import (
	"log/slog"

	"jimaku/internal/logging"
	"jimaku/internal/textutil"
)

// Normalize runs the final timeline pass and returns indexed entries.
// The input slice is not modified.
func Normalize(entries []Entry, s Settings) []Entry {
	out, _, _ := normalizePass(entries, s, nil, nil)
	return out
}

// normalizePass separates consecutive entries by the configured gap. It
// trims the previous entry, or delays the current one when it starts no
// later than the previous. It then applies the duration floors and ceiling
// and assigns 1-based indices.
// It returns the finished entries, how many were truncated to MaxDuration,
// and whether the pass ran to completion.
func normalizePass(entries []Entry, s Settings, logger *slog.Logger, step func(done, total int) bool) ([]Entry, int, bool) {
	gap := s.Gap()
	out := make([]Entry, 0, len(entries))
	truncated := 0
	for i, entry := range entries {
		entry.Text = textutil.CollapseWhitespace(entry.Text)

		if len(out) > 0 {
			prev := &out[len(out)-1]
			closeGap(prev, entry.Start, gap, s.MinDurationAbsolute)
			if entry.Start < prev.End {
				// prev cannot shrink below its own start.
				shift := prev.End + gap - entry.Start
				entry.Start += shift
				entry.End += shift
			}
		}

		audio := entry.IsAudioEvent()
		if !entry.Oversized {
			floor := s.MinDurationTarget
			if audio {
				floor = s.MinDurationAbsolute
			}
			entry.End = max(entry.End, entry.Start+floor)
		}
		if !entry.Oversized && !audio && entry.Duration() > s.MaxDuration {
			logging.WarnWithContext(logger, "entry exceeds max duration; truncating", "entry_truncated",
				logging.String("text", textutil.Truncate(entry.Text, 30)),
				logging.Float64("duration_seconds", entry.Duration()),
				logging.Float64("max_duration_seconds", s.MaxDuration),
				logging.String(logging.FieldErrorHint, "shorten the fragment or raise max_duration"),
				logging.String(logging.FieldImpact, "subtitle disappears before the speech ends"),
			)
			entry.End = entry.Start + s.MaxDuration
			truncated++
		}
		if entry.End < entry.Start+epsilon {
			entry.End = entry.Start + epsilon
		}

		entry.Index = len(out) + 1
		out = append(out, entry)

		if step != nil && !step(i+1, len(entries)) {
			return out, truncated, false
		}
	}
	return out, truncated, true
}

// closeGap pulls prev.End back so that at least gap seconds separate it from
// nextStart. prev keeps at least minDuration; when that is impossible the gap
// shrinks to epsilon, and as a last resort prev ends exactly at nextStart.
// When nextStart is not after prev.Start the overlap is left for the caller.
func closeGap(prev *Entry, nextStart, gap, minDuration float64) {
	if nextStart >= prev.End+gap {
		return
	}
	if end := nextStart - gap; end > prev.Start+minDuration {
		prev.End = end
		return
	}
	if end := nextStart - epsilon; end > prev.Start+minDuration {
		prev.End = end
		return
	}
	if prev.End > nextStart && nextStart > prev.Start {
		prev.End = nextStart
	}
}
