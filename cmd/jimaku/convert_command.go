package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"jimaku/internal/config"
	"jimaku/internal/fileutil"
	"jimaku/internal/history"
	"jimaku/internal/logging"
	"jimaku/internal/segmentation"
	"jimaku/internal/services"
	"jimaku/internal/subtitles"
	"jimaku/internal/transcript"
)

type convertOptions struct {
	format        string
	fragmentsPath string
	saveFragments string
	outputPath    string
	language      string
	summary       bool
	overwrite     bool
	noHistory     bool
	jsonOutput    bool
	subtitles     subtitleFlags
}

// convertReport is the outcome of one convert invocation, printed as the
// summary and stored in the run history.
type convertReport struct {
	RunID      string          `json:"run_id"`
	Status     history.Status  `json:"status"`
	Transcript string          `json:"transcript"`
	Format     string          `json:"format,omitempty"`
	Language   string          `json:"language,omitempty"`
	Fragments  string          `json:"fragments_source"`
	Output     string          `json:"output,omitempty"`
	Stats      subtitles.Stats `json:"stats"`
	Coverage   float64         `json:"coverage"`
	Issues     []string        `json:"issues,omitempty"`
	Unaligned  []string        `json:"unaligned,omitempty"`
	Duration   float64         `json:"duration_seconds"`
	Error      string          `json:"error,omitempty"`
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <transcript.json>",
		Short: "Create an SRT file from a transcript",
		Long: "Align sentence fragments to the word timings of an ASR transcript and write an SRT file.\n" +
			"Fragments come from --fragments (one per line) or from the configured LLM.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("provide the path to the transcript JSON. Example: jimaku convert episode.json\nRun jimaku convert --help for more details")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			var store *history.Store
			if !opts.noHistory {
				store, err = ctx.openHistory()
				if err != nil {
					logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "this run will not be recorded"),
						logging.String(logging.FieldErrorHint, "check paths.history_db"),
					)
				}
				if store != nil {
					defer store.Close()
				}
			}

			report, runErr := runConvert(cmd.Context(), cfg, logger, args[0], opts)
			recordRun(cmd.Context(), store, logger, report)

			if opts.jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				renderConvertReport(cmd.OutOrStdout(), report, shouldColorize(cmd.OutOrStdout()))
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "auto", formatFlagUsage())
	cmd.Flags().StringVar(&opts.fragmentsPath, "fragments", "", "Text file with one subtitle fragment per line (skips the LLM)")
	cmd.Flags().StringVar(&opts.saveFragments, "save-fragments", "", "Also write the LLM fragments to this file")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "SRT file to write (default: <output_dir>/<transcript name>.srt)")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Prompt language for segmentation (default: transcript language)")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Send a summary of the whole text with every LLM chunk")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Replace an existing SRT file")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the history database")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the run summary as JSON")
	opts.subtitles.register(cmd)
	return cmd
}

// runConvert performs one conversion. The report is filled as far as the
// run got, including on error.
func runConvert(ctx context.Context, cfg *config.Config, logger *slog.Logger, transcriptPath string, opts *convertOptions) (*convertReport, error) {
	started := time.Now()
	report := &convertReport{
		RunID:      uuid.NewString(),
		Status:     history.StatusCompleted,
		Transcript: absPath(transcriptPath),
		Fragments:  "llm",
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "convert"))

	err := convert(ctx, cfg, logger, transcriptPath, opts, report)
	report.Duration = time.Since(started).Seconds()
	if err != nil {
		report.Status = runStatus(err)
		report.Error = err.Error()
		logging.ErrorWithContext(logger, "conversion failed", "convert_failed",
			logging.Error(err),
			logging.String("status", string(report.Status)),
		)
		return report, err
	}
	logger.Info("conversion complete",
		logging.String("output", report.Output),
		logging.Int("entries", report.Stats.Entries),
		logging.Float64("coverage", report.Coverage),
	)
	return report, nil
}

func convert(ctx context.Context, cfg *config.Config, logger *slog.Logger, transcriptPath string, opts *convertOptions, report *convertReport) error {
	settings, err := opts.subtitles.apply(cfg.Subtitles)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "convert", "settings", "", err)
	}

	output := strings.TrimSpace(opts.outputPath)
	if output == "" {
		output = defaultOutputPath(cfg, transcriptPath)
	}
	output = absPath(output)
	if fileExists(output) && !opts.overwrite {
		return services.Wrap(services.ErrValidation, "convert", "output", fmt.Sprintf("%s already exists (use --overwrite)", output), nil)
	}
	lock, err := fileutil.LockPath(output)
	if err != nil {
		return services.Wrap(services.ErrValidation, "convert", "lock output", output, err)
	}
	defer func() {
		if err := fileutil.Unlock(lock); err != nil {
			logger.Debug("release output lock", logging.Error(err))
		}
	}()

	format, err := transcript.ParseFormat(opts.format)
	if err != nil {
		return services.Wrap(services.ErrValidation, "convert", "format", "", err)
	}
	t, format, err := transcript.Load(transcriptPath, format)
	report.Format = string(format)
	if err != nil {
		return err
	}
	report.Language = t.Language
	logger.Info("transcript loaded", logging.String("summary", transcript.Describe(t, format)))

	fragments, err := loadOrSegment(ctx, cfg, logger, t, opts, report)
	if err != nil {
		return err
	}

	pipeline, err := subtitles.NewPipeline(settings, logger)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "convert", "pipeline", "", err)
	}
	sampler := logging.NewProgressSampler(20)
	result, err := pipeline.Run(ctx, t, fragments, subtitles.Hooks{
		Progress: func(percent int) {
			if sampler.ShouldLog(percent, "pipeline") {
				logger.Debug("pipeline progress", logging.Int("percent", percent))
			}
		},
	})
	if result != nil {
		report.Stats = result.Stats
		report.Unaligned = result.Unaligned
	}
	if err != nil {
		return err
	}

	report.Issues = subtitles.ValidateEntries(result.Entries, settings)
	report.Coverage = coverage(t, result.Entries)
	if report.Coverage < lowCoverage {
		logging.WarnWithContext(logger, "subtitle text covers little of the transcript", "low_coverage",
			logging.Alert("review"),
			logging.Float64("coverage", report.Coverage),
			logging.Int("unaligned", result.Stats.Unaligned),
			logging.String(logging.FieldErrorHint, "compare the fragments with the transcript or regenerate them"),
		)
	}
	for _, issue := range report.Issues {
		logging.WarnWithContext(logger, "subtitle track issue", "subtitle_validation_issue",
			logging.String("issue", issue),
			logging.String(logging.FieldImpact, "the track is written anyway"),
		)
	}

	if err := fileutil.WriteFileAtomic(output, []byte(result.SRT()), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "convert", "write srt", output, err)
	}
	report.Output = output
	return nil
}

func loadOrSegment(ctx context.Context, cfg *config.Config, logger *slog.Logger, t subtitles.Transcript, opts *convertOptions, report *convertReport) ([]string, error) {
	if path := strings.TrimSpace(opts.fragmentsPath); path != "" {
		report.Fragments = absPath(path)
		fragments, err := segmentation.LoadFragments(path)
		if err != nil {
			return nil, services.Wrap(services.ErrNotFound, "convert", "load fragments", path, err)
		}
		logger.Info("fragments loaded", logging.String("path", path), logging.Int("fragments", len(fragments)))
		return fragments, nil
	}

	fragments, err := segmentTranscript(ctx, cfg, logger, t, opts.language, opts.summary)
	if err != nil {
		return nil, err
	}
	if path := strings.TrimSpace(opts.saveFragments); path != "" {
		if err := fileutil.WriteFileAtomic(path, []byte(segmentation.FormatFragments(fragments)), 0o644); err != nil {
			logging.WarnWithContext(logger, "could not save fragments", "fragments_save_failed",
				logging.Error(err),
				logging.String("path", path),
				logging.String(logging.FieldImpact, "fragments must be regenerated to rerun alignment"),
			)
		}
	}
	return fragments, nil
}

// runStatus maps a conversion error to its history status.
func runStatus(err error) history.Status {
	if errors.Is(err, subtitles.ErrCancelled) {
		return history.StatusCancelled
	}
	if errors.Is(err, subtitles.ErrNoWords) || errors.Is(err, subtitles.ErrNoFragments) {
		return history.StatusRejected
	}
	return services.FailureStatus(err)
}

func recordRun(ctx context.Context, store *history.Store, logger *slog.Logger, report *convertReport) {
	if store == nil || report == nil {
		return
	}
	finished := time.Now()
	started := finished.Add(-time.Duration(report.Duration * float64(time.Second)))
	fragmentsPath := report.Fragments
	if fragmentsPath == "llm" {
		fragmentsPath = ""
	}
	// Record even when the command context was cancelled.
	ctx = context.WithoutCancel(ctx)
	_, err := store.Record(ctx, history.Run{
		ID:             report.RunID,
		StartedAt:      started,
		FinishedAt:     finished,
		Status:         report.Status,
		TranscriptPath: report.Transcript,
		Format:         report.Format,
		Language:       report.Language,
		FragmentsPath:  fragmentsPath,
		OutputPath:     report.Output,
		Fragments:      report.Stats.Fragments,
		Entries:        report.Stats.Entries,
		Unaligned:      report.Stats.Unaligned,
		LowConfidence:  report.Stats.LowConfidence,
		Oversized:      report.Stats.Oversized,
		Merged:         report.Stats.Merged,
		Coverage:       report.Coverage,
		ErrorMessage:   report.Error,
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will be missing from 'jimaku history'"),
		)
	}
}
