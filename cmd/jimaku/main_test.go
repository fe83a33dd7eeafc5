package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jimaku/internal/history"
	"jimaku/internal/services"
	"jimaku/internal/subtitles"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
}

func setupCLITestEnv(t *testing.T, llmURL string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("JIMAKU_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  filepath.Join(base, "out"),
	}
	var llm string
	if llmURL != "" {
		llm = fmt.Sprintf("[llm]\napi_key = \"test-key-123456\"\nbase_url = %q\n", llmURL)
	}
	content := fmt.Sprintf("[paths]\noutput_dir = %q\nlog_dir = \"\"\nhistory_db = %q\n\n%s\n[logging]\nlevel = \"error\"\n",
		env.outputDir, filepath.Join(base, "history.db"), llm)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

var testSentences = []string{"Hello there.", "How are you today?", "I am fine, thanks."}

// writeScribeTranscript writes an ElevenLabs style transcript in which every
// token lasts 0.4s, tokens are 0.5s apart and sentences are 1s apart.
func writeScribeTranscript(t *testing.T, dir string, sentences ...string) string {
	t.Helper()
	var words []map[string]any
	at := 0.0
	for _, sentence := range sentences {
		for _, token := range strings.Fields(sentence) {
			if len(words) > 0 {
				words = append(words, map[string]any{"text": " ", "start": at, "end": at, "type": "spacing"})
			}
			words = append(words, map[string]any{"text": token, "start": at, "end": at + 0.4, "type": "word", "speaker_id": "speaker_0"})
			at += 0.5
		}
		at += 1.0
	}
	data, err := json.Marshal(map[string]any{
		"language_code": "eng",
		"text":          strings.Join(sentences, " "),
		"words":         words,
	})
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	path := filepath.Join(dir, "episode.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return path
}

func writeFragments(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "fragments.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write fragments: %v", err)
	}
	return path
}

func listRuns(t *testing.T, env *cliTestEnv) []history.Run {
	t.Helper()
	out, _, err := runCLI(t, env, "history", "--json")
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var runs []history.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	return runs
}

func TestConvertWithFragmentsFile(t *testing.T) {
	env := setupCLITestEnv(t, "")
	transcriptPath := writeScribeTranscript(t, env.baseDir, testSentences...)
	fragmentsPath := writeFragments(t, env.baseDir, testSentences...)

	out, _, err := runCLI(t, env, "convert", transcriptPath, "--fragments", fragmentsPath)
	if err != nil {
		t.Fatalf("convert: %v\n%s", err, out)
	}
	requireContains(t, out, "Output:")

	srtPath := filepath.Join(env.outputDir, "episode.srt")
	data, err := os.ReadFile(srtPath)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	srt := string(data)
	requireContains(t, srt, "1\n00:00:00,000 --> ")
	for _, sentence := range testSentences {
		requireContains(t, srt, sentence)
	}
	if _, err := os.Stat(srtPath + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("expected lock file to be removed, got %v", err)
	}

	runs := listRuns(t, env)
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != history.StatusCompleted || run.Entries != 3 || run.Fragments != 3 || run.Unaligned != 0 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Language != "en" || run.Format != "elevenlabs" || run.OutputPath != srtPath {
		t.Fatalf("unexpected run metadata: %+v", run)
	}
	if run.Coverage < 0.99 {
		t.Fatalf("expected full coverage, got %v", run.Coverage)
	}

	show, _, err := runCLI(t, env, "history", "show", run.ShortID())
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, show, run.ID)
	requireContains(t, show, "English")

	table, _, err := runCLI(t, env, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, table, run.ShortID())
	requireContains(t, table, "episode.json")
}

func TestConvertRefusesToOverwrite(t *testing.T) {
	env := setupCLITestEnv(t, "")
	transcriptPath := writeScribeTranscript(t, env.baseDir, testSentences...)
	fragmentsPath := writeFragments(t, env.baseDir, testSentences...)

	if _, _, err := runCLI(t, env, "convert", transcriptPath, "--fragments", fragmentsPath); err != nil {
		t.Fatalf("first convert: %v", err)
	}
	_, _, err := runCLI(t, env, "convert", transcriptPath, "--fragments", fragmentsPath)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
	if _, _, err := runCLI(t, env, "convert", transcriptPath, "--fragments", fragmentsPath, "--overwrite", "--no-history"); err != nil {
		t.Fatalf("convert --overwrite: %v", err)
	}

	runs := listRuns(t, env)
	if len(runs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(runs))
	}
	if runs[0].Status != history.StatusRejected || runs[0].ErrorMessage == "" {
		t.Fatalf("expected newest run rejected, got %+v", runs[0])
	}
}

func TestConvertJSONSummaryAndUnalignedFragment(t *testing.T) {
	env := setupCLITestEnv(t, "")
	transcriptPath := writeScribeTranscript(t, env.baseDir, testSentences...)
	fragmentsPath := writeFragments(t, env.baseDir, "Hello there.", "完全に無関係な文章です", "How are you today?")
	output := filepath.Join(env.baseDir, "custom", "track.srt")

	out, _, err := runCLI(t, env, "convert", transcriptPath, "--fragments", fragmentsPath, "-o", output, "--json")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	var report convertReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Status != history.StatusCompleted || report.Output != output {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Stats.Unaligned != 1 || len(report.Unaligned) != 1 || report.Stats.Entries != 2 {
		t.Fatalf("expected one unaligned fragment, got %+v", report.Stats)
	}
	if report.Coverage >= 0.99 {
		t.Fatalf("expected partial coverage, got %v", report.Coverage)
	}
}

func TestConvertWithoutLLMKeyNeedsFragments(t *testing.T) {
	env := setupCLITestEnv(t, "")
	transcriptPath := writeScribeTranscript(t, env.baseDir, testSentences...)

	_, _, err := runCLI(t, env, "convert", transcriptPath)
	if err == nil || !strings.Contains(err.Error(), "JIMAKU_LLM_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	runs := listRuns(t, env)
	if len(runs) != 1 || runs[0].Status != history.StatusRejected {
		t.Fatalf("expected rejected run, got %+v", runs)
	}
}

func newFakeLLM(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key-123456" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": reply}}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConvertWithLLMSegmentation(t *testing.T) {
	server := newFakeLLM(t, strings.Join(testSentences, "\n"))
	env := setupCLITestEnv(t, server.URL)
	transcriptPath := writeScribeTranscript(t, env.baseDir, testSentences...)
	saved := filepath.Join(env.baseDir, "saved.txt")

	out, _, err := runCLI(t, env, "convert", transcriptPath, "--save-fragments", saved)
	if err != nil {
		t.Fatalf("convert: %v\n%s", err, out)
	}
	requireContains(t, out, "3 from llm")

	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("read saved fragments: %v", err)
	}
	if string(data) != strings.Join(testSentences, "\n")+"\n" {
		t.Fatalf("saved fragments = %q", data)
	}
	srt, err := os.ReadFile(filepath.Join(env.outputDir, "episode.srt"))
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	requireContains(t, string(srt), "How are you today?")
}

func TestSegmentCommandWritesFragments(t *testing.T) {
	server := newFakeLLM(t, "Hello there.\n\n  How are you today?  \nI am fine, thanks.")
	env := setupCLITestEnv(t, server.URL)
	transcriptPath := writeScribeTranscript(t, env.baseDir, testSentences...)

	out, _, err := runCLI(t, env, "segment", transcriptPath)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if out != strings.Join(testSentences, "\n")+"\n" {
		t.Fatalf("segment output = %q", out)
	}
}

func TestAlignCommand(t *testing.T) {
	env := setupCLITestEnv(t, "")
	transcriptPath := writeScribeTranscript(t, env.baseDir, testSentences...)

	out, _, err := runCLI(t, env, "align", transcriptPath, "How", "are", "you", "today?")
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	requireContains(t, out, "Ratio:")
	requireContains(t, out, "1.000")
	requireContains(t, out, "How are you today?")

	out, _, err = runCLI(t, env, "align", transcriptPath, "--json", "--cursor", "4", "完全に無関係")
	if err != nil {
		t.Fatalf("align --json: %v", err)
	}
	var report alignReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Matched || report.Next != 4 || report.First != 4 {
		t.Fatalf("expected a miss that keeps the cursor at 4, got %+v", report)
	}
}

func TestValidateCommand(t *testing.T) {
	env := setupCLITestEnv(t, "")
	good := filepath.Join(env.baseDir, "good.srt")
	bad := filepath.Join(env.baseDir, "bad.srt")
	goodSRT := "1\n00:00:01,000 --> 00:00:02,500\nHello.\n\n2\n00:00:03,000 --> 00:00:04,500\nBye.\n\n"
	badSRT := "1\n00:00:01,000 --> 00:00:03,000\nHello.\n\n2\n00:00:02,000 --> 00:00:04,000\nBye.\n\n"
	if err := os.WriteFile(good, []byte(goodSRT), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(badSRT), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, env, "validate", good)
	if err != nil {
		t.Fatalf("validate good: %v", err)
	}
	requireContains(t, out, "no issues")

	out, _, err = runCLI(t, env, "validate", bad)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	requireContains(t, out, "overlap: cue 2")
}

func TestConfigInitShowAndValidate(t *testing.T) {
	server := newFakeLLM(t, "")
	env := setupCLITestEnv(t, server.URL)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "jimaku", "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected overwrite hint, got %v", err)
	}

	out, _, err = runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[llm]")
	requireContains(t, out, "test****3456")
	if strings.Contains(out, "test-key-123456") {
		t.Fatalf("api key leaked: %s", out)
	}
}

func TestHistoryClearRequiresForce(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if _, _, err := runCLI(t, env, "history", "clear"); err == nil {
		t.Fatal("expected --force requirement")
	}
	out, _, err := runCLI(t, env, "history", "clear", "--force")
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Cleared 0 runs")

	out, _, err = runCLI(t, env, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No conversions recorded")
}

func TestRunStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want history.Status
	}{
		{"cancelled pipeline", fmt.Errorf("run: %w", subtitles.ErrCancelled), history.StatusCancelled},
		{"cancelled context", fmt.Errorf("segment: %w", context.Canceled), history.StatusCancelled},
		{"no words", services.Wrap(services.ErrValidation, "transcript", "parse", "", subtitles.ErrNoWords), history.StatusRejected},
		{"no fragments", subtitles.ErrNoFragments, history.StatusRejected},
		{"configuration", services.Wrap(services.ErrConfiguration, "segment", "llm config", "", nil), history.StatusRejected},
		{"nothing aligned", subtitles.ErrNoEntries, history.StatusFailed},
		{"provider", services.Wrap(services.ErrExternalTool, "llm", "request", "", errors.New("502")), history.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runStatus(tt.err); got != tt.want {
				t.Fatalf("runStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCoverage(t *testing.T) {
	tr := subtitles.Transcript{Text: "one two three four"}
	full := []subtitles.Entry{{Text: "one two"}, {Text: "three four"}}
	if got := coverage(tr, full); got < 0.999 {
		t.Fatalf("full coverage = %v", got)
	}
	partial := []subtitles.Entry{{Text: "one two"}}
	if got := coverage(tr, partial); got >= 0.9 || got <= 0 {
		t.Fatalf("partial coverage = %v", got)
	}
	if got := coverage(tr, nil); got != 0 {
		t.Fatalf("empty coverage = %v", got)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, env.configPath)
	requireContains(t, out, "read/write ok")
	requireContains(t, out, "no API key")

	server := newFakeLLM(t, `{"ok":true}`)
	env = setupCLITestEnv(t, server.URL)
	out, _, err = runCLI(t, env, "status", "--json")
	if err != nil {
		t.Fatalf("status --json: %v\n%s", err, out)
	}
	var results []struct {
		Name   string `json:"name"`
		Passed bool   `json:"passed"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("check %s failed: %s", r.Name, out)
		}
	}
}
