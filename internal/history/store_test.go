package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"jimaku/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run, err := store.Record(ctx, history.Run{
		StartedAt:      started,
		FinishedAt:     started.Add(1500 * time.Millisecond),
		Status:         history.StatusCompleted,
		TranscriptPath: "/tmp/episode.json",
		Format:         "elevenlabs",
		Language:       "ja",
		OutputPath:     "/tmp/episode.srt",
		Fragments:      12,
		Entries:        10,
		Unaligned:      1,
		Merged:         2,
		Coverage:       0.93,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(run.ID) != 36 {
		t.Fatalf("expected uuid, got %q", run.ID)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected run")
	}
	if got.Status != history.StatusCompleted || got.Entries != 10 || got.Coverage != 0.93 || got.Language != "ja" {
		t.Fatalf("unexpected run: %+v", got)
	}
	if !got.StartedAt.Equal(started) || got.Duration() != 1500*time.Millisecond {
		t.Fatalf("unexpected timing: %v %v", got.StartedAt, got.Duration())
	}
	if got.FragmentsPath != "" || got.ErrorMessage != "" {
		t.Fatalf("expected empty optional fields: %+v", got)
	}

	byPrefix, err := store.Get(ctx, run.ShortID())
	if err != nil || byPrefix == nil || byPrefix.ID != run.ID {
		t.Fatalf("Get by prefix = %+v, %v", byPrefix, err)
	}

	missing, err := store.Get(ctx, "does-not-exist")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing run, got %+v, %v", missing, err)
	}
}

func TestGetAmbiguousPrefix(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, id := range []string{"abc-1", "abc-2"} {
		if _, err := store.Record(ctx, history.Run{ID: id, Status: history.StatusFailed, TranscriptPath: "x.json"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, history.ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID, got %v", err)
	}
	run, err := store.Get(ctx, "abc-2")
	if err != nil || run == nil || run.ID != "abc-2" {
		t.Fatalf("exact id lookup = %+v, %v", run, err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	offsets := []time.Duration{2 * time.Second, 0, 1500 * time.Millisecond, 1200 * time.Millisecond}
	for i, offset := range offsets {
		_, err := store.Record(ctx, history.Run{
			ID:             string(rune('a' + i)),
			StartedAt:      base.Add(offset),
			Status:         history.StatusCompleted,
			TranscriptPath: "t.json",
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids string
	for _, run := range runs {
		ids += run.ID
	}
	if ids != "acdb" {
		t.Fatalf("order = %q, want acdb", ids)
	}

	limited, err := store.List(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("List limit = %d runs, %v", len(limited), err)
	}
}

func TestRecordRejectsUnknownStatus(t *testing.T) {
	store := openStore(t)
	if _, err := store.Record(context.Background(), history.Run{Status: "exploded", TranscriptPath: "t.json"}); err == nil {
		t.Fatal("expected invalid status error")
	}
}

func TestRecordReplacesExistingID(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	run, err := store.Record(ctx, history.Run{Status: history.StatusFailed, TranscriptPath: "t.json", ErrorMessage: "boom"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	run.Status = history.StatusCompleted
	run.ErrorMessage = ""
	if _, err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record again: %v", err)
	}
	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusCompleted || runs[0].ErrorMessage != "" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestClearAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := store.Record(ctx, history.Run{Status: history.StatusCancelled, TranscriptPath: "t.json"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if count, err := reopened.Count(ctx); err != nil || count != 3 {
		t.Fatalf("Count = %d, %v", count, err)
	}
	removed, err := reopened.Clear(ctx)
	if err != nil || removed != 3 {
		t.Fatalf("Clear = %d, %v", removed, err)
	}
	runs, err := reopened.List(ctx, 10)
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected empty history, got %d runs, %v", len(runs), err)
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]bool{
		"completed":   true,
		" Cancelled ": true,
		"failed":      true,
		"rejected":    true,
		"pending":     false,
	}
	for input, ok := range tests {
		if _, got := history.ParseStatus(input); got != ok {
			t.Fatalf("ParseStatus(%q) ok = %v, want %v", input, got, ok)
		}
	}
}
