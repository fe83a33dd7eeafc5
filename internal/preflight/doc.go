// Package preflight provides readiness checks for the paths and services a
// conversion depends on.
//
// The CLI "jimaku status" command runs RunAll and renders one line per
// check. Checks for optional features are skipped when the feature is not
// configured: no log directory means no log check, and no API key means the
// LLM is reported as not configured instead of failing.
package preflight
