package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"jimaku/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail"`
}

// Options toggles the checks that reach the network.
type Options struct {
	// SkipLLM reports the LLM as skipped instead of sending a health check.
	SkipLLM bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir)}

	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if strings.TrimSpace(cfg.Paths.HistoryDB) != "" {
		results = append(results, CheckHistory(ctx, cfg.Paths.HistoryDB))
	} else {
		results = append(results, Result{Name: "History", Skipped: true, Detail: "disabled (paths.history_db is empty)"})
	}

	switch {
	case strings.TrimSpace(cfg.LLM.APIKey) == "":
		results = append(results, Result{Name: "LLM", Skipped: true, Detail: "no API key (convert needs --fragments)"})
	case opts.SkipLLM:
		results = append(results, Result{Name: "LLM", Skipped: true, Detail: "health check skipped"})
	default:
		results = append(results, CheckLLM(ctx, "LLM", cfg.LLM))
	}
	return results
}

// Passed reports whether no check failed. Skipped checks count as passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Skipped {
			return false
		}
	}
	return true
}

func historyDir(path string) string {
	return filepath.Dir(filepath.Clean(path))
}
