package logging

import "strings"

// FormatSubject builds the "component [run abcd1234 phase]" prefix used in
// console output. Run IDs are shortened to eight characters. A phase without
// a run ID is shown as "component [phase]".
func FormatSubject(component, runID, phase string) string {
	component = strings.TrimSpace(component)
	runID = strings.TrimSpace(runID)
	phase = strings.TrimSpace(phase)
	if len(runID) > 8 {
		runID = runID[:8]
	}

	var tag []string
	if runID != "" {
		tag = append(tag, "run "+runID)
	}
	if phase != "" {
		tag = append(tag, phase)
	}
	if len(tag) == 0 {
		return component
	}
	bracket := "[" + strings.Join(tag, " ") + "]"
	if component == "" {
		return bracket
	}
	return component + " " + bracket
}
