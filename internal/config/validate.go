package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Cross-field subtitle limits
// are checked again by the engine when the settings are built.
func (c *Config) Validate() error {
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	s := c.Subtitles
	switch {
	case s.MinDurationAbsolute <= 0:
		return errors.New("subtitles.min_duration_absolute must be positive")
	case s.MinDurationTarget < s.MinDurationAbsolute:
		return errors.New("subtitles.min_duration_target must be at least subtitles.min_duration_absolute")
	case s.MaxDuration < s.MinDurationTarget:
		return errors.New("subtitles.max_duration must be at least subtitles.min_duration_target")
	case s.MaxCharsPerLine <= 0:
		return errors.New("subtitles.max_chars_per_line must be positive")
	case s.DefaultGapMS < 0:
		return errors.New("subtitles.default_gap_ms must not be negative")
	case s.SimilarityThreshold < 0 || s.SimilarityThreshold > 1:
		return errors.New("subtitles.similarity_threshold must be between 0 and 1")
	case s.MergeGapThreshold < 0:
		return errors.New("subtitles.merge_gap_threshold must not be negative")
	case s.ShortEntryMaxExtension < 0:
		return errors.New("subtitles.short_entry_max_extension must not be negative")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// RequireLLM reports a configuration error when no API key is available.
// Only commands that call the LLM need one.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("llm.api_key is required. Set JIMAKU_LLM_API_KEY or OPENAI_API_KEY, or edit %s (create with 'jimaku config init')", defaultPath)
}
