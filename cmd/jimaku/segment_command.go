package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jimaku/internal/config"
	"jimaku/internal/fileutil"
	"jimaku/internal/logging"
	"jimaku/internal/segmentation"
	"jimaku/internal/services"
	"jimaku/internal/services/llm"
	"jimaku/internal/subtitles"
	"jimaku/internal/transcript"
)

// llmSegmenter builds a Segmenter from the [llm] section. summary forces the
// summary pass on when set; otherwise the config value applies.
func llmSegmenter(cfg *config.Config, logger *slog.Logger, summary bool) (*segmentation.Segmenter, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "segment", "llm config", "", err)
	}
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}, llm.WithLogger(logger))

	sampler := logging.NewProgressSampler(25)
	return segmentation.New(client, segmentation.Options{
		Summary: summary || cfg.LLM.Summary,
		Progress: func(percent int) {
			if sampler.ShouldLog(percent, "segment") {
				logger.Info("segmentation progress", logging.Int("percent", percent))
			}
		},
	}, logger), nil
}

// segmentTranscript asks the LLM for fragments of the transcript text.
func segmentTranscript(ctx context.Context, cfg *config.Config, logger *slog.Logger, t subtitles.Transcript, language string, summary bool) ([]string, error) {
	segmenter, err := llmSegmenter(cfg, logger, summary)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(language) == "" {
		language = t.Language
	}
	return segmenter.Segment(ctx, t.FullText(), language)
}

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var outputPath string
	var language string
	var summary bool

	cmd := &cobra.Command{
		Use:   "segment <transcript.json>",
		Short: "Split transcript text into subtitle fragments with the configured LLM",
		Long: "Send the transcript text to the LLM and write one fragment per line.\n" +
			"Edit the result by hand and pass it to 'jimaku convert --fragments'.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			format, err := transcript.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			t, format, err := transcript.Load(args[0], format)
			if err != nil {
				return err
			}
			logger.Info("transcript loaded", logging.String("summary", transcript.Describe(t, format)))

			fragments, err := segmentTranscript(cmd.Context(), cfg, logger, t, language, summary)
			if err != nil {
				return err
			}

			content := segmentation.FormatFragments(fragments)
			target := strings.TrimSpace(outputPath)
			if target == "" || target == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}
			if err := fileutil.WriteFileAtomic(target, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write fragments: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d fragments to %s\n", len(fragments), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "auto", formatFlagUsage())
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Fragments file to write (default: stdout)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Prompt language (default: transcript language)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Send a summary of the whole text with every chunk")
	return cmd
}

// defaultOutputPath places <transcript base>.srt in the configured output dir.
func defaultOutputPath(cfg *config.Config, transcriptPath string) string {
	base := strings.TrimSuffix(filepath.Base(transcriptPath), filepath.Ext(transcriptPath))
	dir := cfg.Paths.OutputDir
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Dir(transcriptPath)
	}
	return filepath.Join(dir, base+".srt")
}

func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func formatFlagUsage() string {
	names := make([]string, 0, len(transcript.Formats()))
	for _, f := range transcript.Formats() {
		names = append(names, string(f))
	}
	return "Transcript format: " + strings.Join(names, ", ")
}
