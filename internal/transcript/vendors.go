package transcript

import (
	"encoding/json"
	"fmt"
	"strings"

	"jimaku/internal/subtitles"
)

type elevenLabsPayload struct {
	LanguageCode string `json:"language_code"`
	Text         string `json:"text"`
	Words        []struct {
		Text      string  `json:"text"`
		Start     float64 `json:"start"`
		End       float64 `json:"end"`
		Type      string  `json:"type"`
		SpeakerID string  `json:"speaker_id"`
	} `json:"words"`
}

func parseElevenLabs(data []byte) (subtitles.Transcript, error) {
	var payload elevenLabsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return subtitles.Transcript{}, fmt.Errorf("parse elevenlabs json: %w", err)
	}
	words := make([]subtitles.Word, 0, len(payload.Words))
	for _, w := range payload.Words {
		kind := subtitles.KindWord
		switch strings.ToLower(w.Type) {
		case "spacing":
			kind = subtitles.KindSpacing
		case "audio_event":
			kind = subtitles.KindAudioEvent
		}
		words = append(words, subtitles.Word{Text: w.Text, Start: w.Start, End: w.End, SpeakerID: w.SpeakerID, Kind: kind})
	}
	return subtitles.Transcript{Words: words, Text: payload.Text, Language: payload.LanguageCode}, nil
}

type whisperWord struct {
	Word    string   `json:"word"`
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	Speaker string   `json:"speaker"`
}

type whisperPayload struct {
	Language string        `json:"language"`
	Text     string        `json:"text"`
	Words    []whisperWord `json:"words"`
	Segments []struct {
		Text  string        `json:"text"`
		Start float64       `json:"start"`
		End   float64       `json:"end"`
		Words []whisperWord `json:"words"`
	} `json:"segments"`
}

// parseWhisper reads OpenAI verbose_json (top-level words) and WhisperX
// output (words nested in segments). WhisperX leaves start/end out for
// tokens it could not align; those inherit the neighbouring times.
func parseWhisper(data []byte) (subtitles.Transcript, error) {
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return subtitles.Transcript{}, fmt.Errorf("parse whisper json: %w", err)
	}

	var words []subtitles.Word
	var texts []string
	if len(payload.Words) > 0 {
		words = appendWhisperWords(words, payload.Words, 0, 0)
	} else {
		for _, seg := range payload.Segments {
			words = appendWhisperWords(words, seg.Words, seg.Start, seg.End)
			if text := strings.TrimSpace(seg.Text); text != "" {
				texts = append(texts, text)
			}
		}
	}

	text := payload.Text
	if strings.TrimSpace(text) == "" {
		text = strings.Join(texts, " ")
	}
	return subtitles.Transcript{Words: words, Text: text, Language: payload.Language}, nil
}

func appendWhisperWords(dst []subtitles.Word, src []whisperWord, segStart, segEnd float64) []subtitles.Word {
	last := segStart
	if n := len(dst); n > 0 {
		last = max(last, dst[n-1].End)
	}
	for i, w := range src {
		start, end := last, last
		if w.Start != nil {
			start = *w.Start
		}
		if w.End != nil {
			end = *w.End
		} else if next := nextWhisperStart(src[i+1:]); next >= 0 {
			end = next
		} else if segEnd > start {
			end = segEnd
		}
		text := w.Word
		// WhisperX strips the leading space that OpenAI whisper keeps.
		if len(dst) > 0 && !startsWithSpace(text) && !endsWithSpace(dst[len(dst)-1].Text) && isSpaced(text) {
			text = " " + text
		}
		dst = append(dst, subtitles.Word{Text: text, Start: start, End: end, SpeakerID: w.Speaker, Kind: subtitles.KindWord})
		last = max(last, end)
	}
	return dst
}

func nextWhisperStart(rest []whisperWord) float64 {
	for _, w := range rest {
		if w.Start != nil {
			return *w.Start
		}
	}
	return -1
}

type deepgramPayload struct {
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string `json:"transcript"`
				Words      []struct {
					Word           string  `json:"word"`
					PunctuatedWord string  `json:"punctuated_word"`
					Start          float64 `json:"start"`
					End            float64 `json:"end"`
					Speaker        *int    `json:"speaker"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	Metadata struct {
		Language string `json:"language"`
	} `json:"metadata"`
}

func parseDeepgram(data []byte) (subtitles.Transcript, error) {
	var payload deepgramPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return subtitles.Transcript{}, fmt.Errorf("parse deepgram json: %w", err)
	}
	if len(payload.Results.Channels) == 0 || len(payload.Results.Channels[0].Alternatives) == 0 {
		return subtitles.Transcript{}, nil
	}
	channel := payload.Results.Channels[0]
	alt := channel.Alternatives[0]
	language := firstNonBlank(channel.DetectedLanguage, payload.Metadata.Language)

	words := make([]subtitles.Word, 0, len(alt.Words))
	for _, w := range alt.Words {
		text := firstNonBlank(w.PunctuatedWord, w.Word)
		var speaker string
		if w.Speaker != nil {
			speaker = fmt.Sprintf("speaker_%d", *w.Speaker)
		}
		words = append(words, subtitles.Word{Text: text, Start: w.Start, End: w.End, SpeakerID: speaker, Kind: subtitles.KindWord})
	}
	return subtitles.Transcript{Words: spaceWords(words, language), Text: alt.Transcript, Language: language}, nil
}

type assemblyAIPayload struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	Words        []struct {
		Text    string `json:"text"`
		Start   int64  `json:"start"`
		End     int64  `json:"end"`
		Speaker string `json:"speaker"`
	} `json:"words"`
}

// parseAssemblyAI reads word times given in milliseconds.
func parseAssemblyAI(data []byte) (subtitles.Transcript, error) {
	var payload assemblyAIPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return subtitles.Transcript{}, fmt.Errorf("parse assemblyai json: %w", err)
	}
	words := make([]subtitles.Word, 0, len(payload.Words))
	for _, w := range payload.Words {
		words = append(words, subtitles.Word{
			Text:      w.Text,
			Start:     float64(w.Start) / 1000,
			End:       float64(w.End) / 1000,
			SpeakerID: w.Speaker,
			Kind:      subtitles.KindWord,
		})
	}
	return subtitles.Transcript{Words: spaceWords(words, payload.LanguageCode), Text: payload.Text, Language: payload.LanguageCode}, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
