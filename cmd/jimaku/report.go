package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"jimaku/internal/history"
	"jimaku/internal/subtitles"
	"jimaku/internal/textutil"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 14
	statusIndent     = "  "
	// lowCoverage flags tracks whose text covers little of the transcript.
	lowCoverage = 0.8
)

// coverage compares the token profile of the subtitle text with the
// transcript text. Dropped fragments and skipped chunks lower it.
func coverage(t subtitles.Transcript, entries []subtitles.Entry) float64 {
	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		texts = append(texts, e.Text)
	}
	return textutil.CosineSimilarity(
		textutil.NewFingerprint(t.FullText()),
		textutil.NewFingerprint(strings.Join(texts, " ")),
	)
}

func renderConvertReport(w io.Writer, r *convertReport, colorize bool) {
	if r == nil {
		return
	}
	for _, line := range renderSectionHeader("jimaku convert", colorize) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, renderStatusLine("Run", statusInfo, r.RunID, colorize))
	fmt.Fprintln(w, renderStatusLine("Transcript", statusInfo, transcriptLabel(r), colorize))
	fmt.Fprintln(w, renderStatusLine("Fragments", statusInfo, fmt.Sprintf("%d from %s", r.Stats.Fragments, r.Fragments), colorize))

	if r.Status != history.StatusCompleted {
		fmt.Fprintln(w, renderStatusLine("Status", statusForRun(r.Status), r.Error, colorize))
		if r.Stats.Entries == 0 {
			return
		}
	}

	fmt.Fprintln(w, renderStatusLine("Entries", statusOK, fmt.Sprintf("%d (merged %d, split %d, audio events %d)",
		r.Stats.Entries, r.Stats.Merged, r.Stats.Split, r.Stats.AudioEvents), colorize))
	if r.Stats.Unaligned > 0 {
		fmt.Fprintln(w, renderStatusLine("Unaligned", statusWarn, fmt.Sprintf("%d fragments dropped", r.Stats.Unaligned), colorize))
	}
	if r.Stats.LowConfidence > 0 {
		fmt.Fprintln(w, renderStatusLine("Confidence", statusWarn, fmt.Sprintf("%d low-confidence alignments", r.Stats.LowConfidence), colorize))
	}
	if r.Stats.Oversized > 0 {
		fmt.Fprintln(w, renderStatusLine("Oversized", statusWarn, fmt.Sprintf("%d entries exceed the limits", r.Stats.Oversized), colorize))
	}
	coverageKind := statusOK
	if r.Coverage < lowCoverage {
		coverageKind = statusWarn
	}
	fmt.Fprintln(w, renderStatusLine("Coverage", coverageKind, fmt.Sprintf("%.1f%%", r.Coverage*100), colorize))
	if len(r.Issues) > 0 {
		fmt.Fprintln(w, renderStatusLine("Validation", statusWarn, fmt.Sprintf("%d issues (see log)", len(r.Issues)), colorize))
	}
	if r.Output != "" {
		fmt.Fprintln(w, renderStatusLine("Output", statusOK, r.Output, colorize))
	}
}

func transcriptLabel(r *convertReport) string {
	label := r.Transcript
	var details []string
	if r.Format != "" {
		details = append(details, r.Format)
	}
	if r.Language != "" {
		details = append(details, r.Language)
	}
	if len(details) > 0 {
		label += " (" + strings.Join(details, ", ") + ")"
	}
	return label
}

func statusForRun(status history.Status) statusKind {
	switch status {
	case history.StatusCompleted:
		return statusOK
	case history.StatusCancelled:
		return statusWarn
	default:
		return statusError
	}
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
