package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jimaku/internal/subtitles"
	"jimaku/internal/transcript"
)

// alignReport describes one fragment lookup for debugging fragment files.
type alignReport struct {
	Fragment string  `json:"fragment"`
	Matched  bool    `json:"matched"`
	Ratio    float64 `json:"ratio"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Text     string  `json:"text"`
	First    int     `json:"first_word"`
	Next     int     `json:"next_cursor"`
}

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var cursor int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "align <transcript.json> <fragment>...",
		Short: "Show where a fragment aligns in a transcript",
		Long: "Run the fuzzy aligner for a single fragment and print the matched words,\n" +
			"their timing and the similarity ratio. Remaining arguments are joined with spaces.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			format, err := transcript.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			t, _, err := transcript.Load(args[0], format)
			if err != nil {
				return err
			}
			fragment := strings.Join(args[1:], " ")
			alignment := subtitles.Align(fragment, t.Words, cursor)

			report := alignReport{
				Fragment: fragment,
				Matched:  alignment.Matched(),
				Ratio:    alignment.Ratio,
				First:    alignment.Start,
				Next:     alignment.Next,
			}
			if report.Matched {
				words := alignment.Words
				report.Start = words[0].Start
				report.End = words[len(words)-1].End
				var b strings.Builder
				for _, w := range words {
					b.WriteString(w.Text)
				}
				report.Text = strings.TrimSpace(b.String())
			}
			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if !report.Matched {
				fmt.Fprintln(out, renderStatusLine("Fragment", statusError, "no match at or after word "+fmt.Sprint(cursor), colorize))
				return nil
			}
			kind := statusOK
			if report.Ratio < cfg.Subtitles.SimilarityThreshold {
				kind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Ratio", kind, fmt.Sprintf("%.3f", report.Ratio), colorize))
			fmt.Fprintln(out, renderStatusLine("Timing", statusInfo, fmt.Sprintf("%s --> %s",
				subtitles.FormatTimestamp(report.Start), subtitles.FormatTimestamp(report.End)), colorize))
			fmt.Fprintln(out, renderStatusLine("Words", statusInfo, fmt.Sprintf("%d..%d", report.First, report.Next-1), colorize))
			fmt.Fprintln(out, renderStatusLine("Text", statusInfo, report.Text, colorize))
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "auto", formatFlagUsage())
	cmd.Flags().IntVar(&cursor, "cursor", 0, "Word index to start searching from")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the alignment as JSON")
	return cmd
}
