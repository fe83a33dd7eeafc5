package main

import (
	"github.com/spf13/cobra"

	"jimaku/internal/config"
	"jimaku/internal/subtitles"
)

// subtitleFlags overrides individual [subtitles] values for one invocation.
type subtitleFlags struct {
	maxChars    int
	maxDuration float64
	minDuration float64
	gapMS       int
	threshold   float64
}

func (f *subtitleFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxChars, "max-chars", 0, "Maximum characters per subtitle line (default from config)")
	cmd.Flags().Float64Var(&f.maxDuration, "max-duration", 0, "Maximum seconds a subtitle stays on screen (default from config)")
	cmd.Flags().Float64Var(&f.minDuration, "min-duration", 0, "Target minimum seconds per subtitle (default from config)")
	cmd.Flags().IntVar(&f.gapMS, "gap-ms", -1, "Minimum gap between subtitles in milliseconds (default from config)")
	cmd.Flags().Float64Var(&f.threshold, "similarity-threshold", -1, "Alignment ratio below which a match is reported as low confidence")
}

// apply copies the set flags over cfg and returns the engine settings.
func (f *subtitleFlags) apply(cfg config.Subtitles) (subtitles.Settings, error) {
	if f != nil {
		if f.maxChars > 0 {
			cfg.MaxCharsPerLine = f.maxChars
		}
		if f.maxDuration > 0 {
			cfg.MaxDuration = f.maxDuration
		}
		if f.minDuration > 0 {
			cfg.MinDurationTarget = f.minDuration
		}
		if f.gapMS >= 0 {
			cfg.DefaultGapMS = f.gapMS
		}
		if f.threshold >= 0 {
			cfg.SimilarityThreshold = f.threshold
		}
	}
	settings := subtitleSettings(cfg)
	if err := settings.Validate(); err != nil {
		return subtitles.Settings{}, err
	}
	return settings, nil
}

func subtitleSettings(cfg config.Subtitles) subtitles.Settings {
	return subtitles.Settings{
		MinDurationTarget:      cfg.MinDurationTarget,
		MinDurationAbsolute:    cfg.MinDurationAbsolute,
		MaxDuration:            cfg.MaxDuration,
		MaxCharsPerLine:        cfg.MaxCharsPerLine,
		DefaultGapMS:           cfg.DefaultGapMS,
		SimilarityThreshold:    cfg.SimilarityThreshold,
		MergeGapThreshold:      cfg.MergeGapThreshold,
		ShortEntryMaxExtension: cfg.ShortEntryMaxExtension,
	}
}
