package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jimaku/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, run history and the LLM endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{SkipLLM: offline})
			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("jimaku status", colorize) {
					fmt.Fprintln(out, line)
				}
				if ctx.configPath != "" {
					fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
				}
				for _, r := range results {
					fmt.Fprintln(out, renderStatusLine(r.Name, preflightKind(r), r.Detail, colorize))
				}
			}
			if !preflight.Passed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the LLM health check request")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the check results as JSON")
	return cmd
}

func preflightKind(r preflight.Result) statusKind {
	switch {
	case r.Skipped:
		return statusInfo
	case r.Passed:
		return statusOK
	default:
		return statusError
	}
}
