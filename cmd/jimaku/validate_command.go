package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jimaku/internal/subtitles"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var flags subtitleFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <file.srt>",
		Short: "Check an SRT file for ordering, overlap, gap and size problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			settings, err := flags.apply(cfg.Subtitles)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read srt: %w", err)
			}
			issues := subtitles.ValidateSRTContent(string(data), settings)

			if jsonOutput {
				if issues == nil {
					issues = []string{}
				}
				if err := writeJSON(cmd, map[string]any{"file": args[0], "issues": issues}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				if len(issues) == 0 {
					fmt.Fprintln(out, renderStatusLine(args[0], statusOK, "no issues", colorize))
				}
				for _, issue := range issues {
					fmt.Fprintln(out, renderStatusLine(args[0], statusWarn, issue, colorize))
				}
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d validation issues", len(issues))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print issues as JSON")
	return cmd
}
