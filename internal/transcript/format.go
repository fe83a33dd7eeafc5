package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Format names a vendor JSON layout.
type Format string

const (
	FormatAuto       Format = "auto"
	FormatElevenLabs Format = "elevenlabs"
	FormatWhisper    Format = "whisper"
	FormatDeepgram   Format = "deepgram"
	FormatAssemblyAI Format = "assemblyai"
)

// ErrUnknownFormat is returned when a document matches no supported layout.
var ErrUnknownFormat = errors.New("unrecognized transcript format")

// Formats lists the accepted format names, auto first.
func Formats() []Format {
	return []Format{FormatAuto, FormatElevenLabs, FormatWhisper, FormatDeepgram, FormatAssemblyAI}
}

// ParseFormat resolves a user supplied format name. Empty means auto.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return FormatAuto, nil
	case "elevenlabs", "scribe":
		return FormatElevenLabs, nil
	case "whisper", "whisperx", "openai":
		return FormatWhisper, nil
	case "deepgram":
		return FormatDeepgram, nil
	case "assemblyai", "assembly":
		return FormatAssemblyAI, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
}

// assemblyAIKeys only appear in AssemblyAI transcript objects.
var assemblyAIKeys = []string{"audio_duration", "acoustic_model", "language_model", "audio_url"}

// Detect guesses the vendor from the top-level shape of data.
func Detect(data []byte) (Format, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return "", fmt.Errorf("detect transcript format: %w", err)
	}
	if _, ok := top["results"]; ok {
		return FormatDeepgram, nil
	}
	if _, ok := top["segments"]; ok {
		return FormatWhisper, nil
	}
	raw, ok := top["words"]
	if !ok {
		return "", ErrUnknownFormat
	}
	for _, key := range assemblyAIKeys {
		if _, ok := top[key]; ok {
			return FormatAssemblyAI, nil
		}
	}
	var words []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &words); err != nil {
		return "", fmt.Errorf("detect transcript format: words: %w", err)
	}
	if len(words) > 0 {
		if _, ok := words[0]["word"]; ok {
			return FormatWhisper, nil
		}
	}
	return FormatElevenLabs, nil
}
