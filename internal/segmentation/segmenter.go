package segmentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"jimaku/internal/logging"
	"jimaku/internal/services"
	"jimaku/internal/services/llm"
)

// ErrNoSegments is returned when no chunk produced a usable line.
var ErrNoSegments = errors.New("llm returned no segments")

// Completer sends one chat completion. *llm.Client satisfies it.
type Completer interface {
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var _ Completer = (*llm.Client)(nil)

// Options tunes a Segmenter. The zero value is usable.
type Options struct {
	// Summary requests a whole-text summary first and sends it with every chunk.
	Summary bool
	// MaxChunkChars bounds one request; zero means DefaultMaxChunkChars.
	MaxChunkChars int
	// Progress receives 0..100 after each chunk.
	Progress func(percent int)
}

// Segmenter asks an LLM to break transcript text into subtitle fragments.
type Segmenter struct {
	client Completer
	opts   Options
	logger *slog.Logger
}

// New returns a Segmenter backed by client.
func New(client Completer, opts Options, logger *slog.Logger) *Segmenter {
	if opts.MaxChunkChars <= 0 {
		opts.MaxChunkChars = DefaultMaxChunkChars
	}
	return &Segmenter{
		client: client,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "segmentation"),
	}
}

// Segment returns the fragments for text. A failed chunk is logged and
// skipped; the call only fails when every chunk failed. Cancellation is
// checked between chunks and returns the fragments gathered so far with
// the context error.
func (s *Segmenter) Segment(ctx context.Context, text, language string) ([]string, error) {
	if s.client == nil {
		return nil, services.Wrap(services.ErrConfiguration, "segment", "init", "no llm client configured", nil)
	}
	chunks := SplitChunks(text, s.opts.MaxChunkChars)
	if len(chunks) == 0 {
		return nil, services.Wrap(services.ErrValidation, "segment", "split", "transcript text is empty", nil)
	}
	ctx = services.WithPhase(ctx, "segment")
	logger := logging.WithContext(ctx, s.logger)

	var summary string
	if s.opts.Summary {
		summary = s.summarize(ctx, logger, text, language)
	}

	logger.Info("segmenting transcript text",
		logging.Int("chunks", len(chunks)),
		logging.Int("chars", len([]rune(text))),
		logging.String("language", promptLanguage(language)),
		logging.Bool("summary", summary != ""),
	)

	system := SystemPrompt(language)
	var fragments []string
	failed := 0
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			logger.Info("segmentation cancelled", logging.Int("chunk", i+1), logging.Int("fragments_kept", len(fragments)))
			return fragments, fmt.Errorf("segment: %w", err)
		}
		reply, err := s.client.CompleteText(ctx, system, userContent(summary, chunk))
		if err != nil {
			if ctx.Err() != nil {
				return fragments, fmt.Errorf("segment: %w", ctx.Err())
			}
			failed++
			logging.WarnWithContext(logger, "chunk segmentation failed; skipping", "segment_chunk_failed",
				logging.Int("chunk", i+1),
				logging.Int("chunks", len(chunks)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the llm endpoint, key and model"),
				logging.String(logging.FieldImpact, "text of this chunk will have no subtitles"),
			)
		} else {
			lines := ParseReply(reply)
			fragments = append(fragments, lines...)
			logger.Debug("chunk segmented", logging.Int("chunk", i+1), logging.Int("fragments", len(lines)))
		}
		if s.opts.Progress != nil {
			s.opts.Progress((i + 1) * 100 / len(chunks))
		}
	}

	if len(fragments) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "segment", "chat completion",
			fmt.Sprintf("%d of %d chunks failed", failed, len(chunks)), ErrNoSegments)
	}
	logger.Info("segmentation complete", logging.Int("fragments", len(fragments)), logging.Int("failed_chunks", failed))
	return fragments, nil
}

func (s *Segmenter) summarize(ctx context.Context, logger *slog.Logger, text, language string) string {
	reply, err := s.client.CompleteText(ctx, SummaryPrompt(language), text)
	if err != nil {
		logging.WarnWithContext(logger, "summary request failed; continuing without summary", "segment_summary_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "chunks are segmented without whole-text context"),
		)
		return ""
	}
	return strings.TrimSpace(llm.StripCodeFence(reply))
}

// ParseReply splits an LLM reply into fragments: one per non-blank line,
// trimmed, with any surrounding code fence removed.
func ParseReply(reply string) []string {
	var lines []string
	for _, line := range strings.Split(llm.StripCodeFence(reply), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
