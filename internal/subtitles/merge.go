package subtitles

// CanMerge reports whether cur and next should be combined: cur is shorter
// than the soft minimum, next is speech, and the combined entry stays within
// the width and duration limits, reaches the soft minimum, and bridges a gap
// below MergeGapThreshold.
func CanMerge(cur, next Entry, s Settings) bool {
	if cur.Duration() >= s.MinDurationTarget {
		return false
	}
	if next.IsAudioEvent() {
		return false
	}
	if cur.Chars()+next.Chars()+1 > s.MaxCharsPerLine {
		return false
	}
	combined := next.End - cur.Start
	if combined > s.MaxDuration || combined < s.MinDurationTarget {
		return false
	}
	return next.Start-cur.End < s.MergeGapThreshold
}

// MergeEntries joins two entries. The word views are copied into a new slice
// so neither source is aliased, and the lower confidence wins.
func MergeEntries(cur, next Entry) Entry {
	words := make([]Word, 0, len(cur.Words)+len(next.Words))
	words = append(words, cur.Words...)
	words = append(words, next.Words...)
	return Entry{
		Start:      cur.Start,
		End:        next.End,
		Text:       cur.Text + " " + next.Text,
		Words:      words,
		Confidence: min(cur.Confidence, next.Confidence),
		Oversized:  cur.Oversized || next.Oversized,
	}
}

// Merge runs one left-to-right pass. A merged pair is not reconsidered.
// It returns the new list and the number of merges made.
func Merge(entries []Entry, s Settings) ([]Entry, int) {
	out, merged, _ := mergePass(entries, s, nil)
	return out, merged
}

// mergePass calls step after each position advance; step returning false
// stops the pass and reports it as incomplete.
func mergePass(entries []Entry, s Settings, step func(done, total int) bool) ([]Entry, int, bool) {
	out := make([]Entry, 0, len(entries))
	merged := 0
	for i := 0; i < len(entries); {
		if i+1 < len(entries) && CanMerge(entries[i], entries[i+1], s) {
			out = append(out, MergeEntries(entries[i], entries[i+1]))
			merged++
			i += 2
		} else {
			out = append(out, entries[i])
			i++
		}
		if step != nil && !step(min(i, len(entries)), len(entries)) {
			return out, merged, false
		}
	}
	return out, merged, true
}
