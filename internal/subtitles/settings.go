package subtitles

import (
	"errors"
	"fmt"
)

// Settings bounds the shape of every emitted entry.
type Settings struct {
	// MinDurationTarget is the soft floor short entries are extended toward.
	MinDurationTarget float64
	// MinDurationAbsolute is the hard floor; only oversized entries may end up shorter.
	MinDurationAbsolute float64
	// MaxDuration is the hard ceiling for a single entry.
	MaxDuration float64
	// MaxCharsPerLine is the hard width ceiling, counted in runes.
	MaxCharsPerLine int
	// DefaultGapMS is the minimum gap kept between consecutive entries.
	DefaultGapMS int
	// SimilarityThreshold flags alignments scoring below it as low confidence.
	SimilarityThreshold float64
	// MergeGapThreshold is the largest gap two entries may have and still merge.
	MergeGapThreshold float64
	// ShortEntryMaxExtension caps how far past its last word a short entry grows.
	ShortEntryMaxExtension float64
}

const (
	DefaultMinDurationTarget      = 1.2
	DefaultMinDurationAbsolute    = 1.0
	DefaultMaxDuration            = 12.0
	DefaultMaxCharsPerLine        = 60
	DefaultGapMS                  = 100
	DefaultSimilarityThreshold    = 0.7
	DefaultMergeGapThreshold      = 0.5
	DefaultShortEntryMaxExtension = 0.5

	// epsilon is the smallest duration an entry may have.
	epsilon = 0.001
)

// DefaultSettings returns the stock limits.
func DefaultSettings() Settings {
	return Settings{
		MinDurationTarget:      DefaultMinDurationTarget,
		MinDurationAbsolute:    DefaultMinDurationAbsolute,
		MaxDuration:            DefaultMaxDuration,
		MaxCharsPerLine:        DefaultMaxCharsPerLine,
		DefaultGapMS:           DefaultGapMS,
		SimilarityThreshold:    DefaultSimilarityThreshold,
		MergeGapThreshold:      DefaultMergeGapThreshold,
		ShortEntryMaxExtension: DefaultShortEntryMaxExtension,
	}
}

// Validate ensures the limits are mutually consistent.
func (s Settings) Validate() error {
	switch {
	case s.MinDurationAbsolute <= 0:
		return errors.New("min_duration_absolute must be positive")
	case s.MinDurationTarget < s.MinDurationAbsolute:
		return fmt.Errorf("min_duration_target (%.3f) must be at least min_duration_absolute (%.3f)", s.MinDurationTarget, s.MinDurationAbsolute)
	case s.MaxDuration < s.MinDurationTarget:
		return fmt.Errorf("max_duration (%.3f) must be at least min_duration_target (%.3f)", s.MaxDuration, s.MinDurationTarget)
	case s.MaxCharsPerLine <= 0:
		return errors.New("max_chars_per_line must be positive")
	case s.DefaultGapMS < 0:
		return errors.New("default_gap_ms must not be negative")
	case s.SimilarityThreshold < 0 || s.SimilarityThreshold > 1:
		return errors.New("similarity_threshold must be between 0 and 1")
	case s.MergeGapThreshold < 0:
		return errors.New("merge_gap_threshold must not be negative")
	case s.ShortEntryMaxExtension < 0:
		return errors.New("short_entry_max_extension must not be negative")
	}
	return nil
}

// Gap returns DefaultGapMS in seconds.
func (s Settings) Gap() float64 {
	return float64(s.DefaultGapMS) / 1000
}
