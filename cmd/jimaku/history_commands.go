package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jimaku/internal/history"
	"jimaku/internal/language"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No conversions recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunTable(runs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded conversion (a unique ID prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", args[0])
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}
				renderRunDetail(cmd, run)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every recorded conversion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("refusing to clear history without --force")
			}
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Confirm removal of all history")
	return cmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	store, err := ctx.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("run history is disabled (paths.history_db is empty)")
	}
	defer store.Close()
	return fn(store)
}

func renderRunTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ShortID(),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			string(run.Status),
			filepath.Base(run.TranscriptPath),
			run.Language,
			fmt.Sprintf("%d", run.Entries),
			fmt.Sprintf("%d", run.Unaligned),
			fmt.Sprintf("%.0f%%", run.Coverage*100),
			formatRunDuration(run.Duration()),
		})
	}
	return renderTable([]column{
		{header: "ID"},
		{header: "Started"},
		{header: "Status"},
		{header: "Transcript", maxWidth: 40},
		{header: "Lang"},
		{header: "Entries", right: true},
		{header: "Unaligned", right: true},
		{header: "Coverage", right: true},
		{header: "Took", right: true},
	}, rows)
}

func renderRunDetail(cmd *cobra.Command, run *history.Run) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("run "+run.ShortID(), colorize) {
		fmt.Fprintln(out, line)
	}
	fields := []struct {
		label string
		value string
	}{
		{"ID", run.ID},
		{"Status", string(run.Status)},
		{"Started", run.StartedAt.Local().Format(time.RFC3339)},
		{"Took", formatRunDuration(run.Duration())},
		{"Transcript", run.TranscriptPath},
		{"Format", run.Format},
		{"Language", language.DisplayName(run.Language)},
		{"Fragments", fragmentSource(run)},
		{"Output", run.OutputPath},
		{"Entries", fmt.Sprintf("%d (merged %d, oversized %d)", run.Entries, run.Merged, run.Oversized)},
		{"Unaligned", fmt.Sprintf("%d", run.Unaligned)},
		{"Low conf.", fmt.Sprintf("%d", run.LowConfidence)},
		{"Coverage", fmt.Sprintf("%.1f%%", run.Coverage*100)},
		{"Error", run.ErrorMessage},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		kind := statusInfo
		switch f.label {
		case "Status":
			kind = statusForRun(run.Status)
		case "Error":
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(f.label, kind, f.value, colorize))
	}
}

func fragmentSource(run *history.Run) string {
	if run.FragmentsPath != "" {
		return fmt.Sprintf("%d from %s", run.Fragments, run.FragmentsPath)
	}
	return fmt.Sprintf("%d from llm", run.Fragments)
}

func formatRunDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
