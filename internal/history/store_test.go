package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"talkscout/internal/history"
	"talkscout/internal/testsupport"
)

func TestCreateAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	rec, err := store.Create(ctx, &history.Record{
		RunID:   "run-1",
		URL:     "https://www.youtube.com/watch?v=abc",
		Title:   "3MT Winner Esther Li",
		Speaker: "Esther Li",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("expected record ID to be assigned")
	}
	if rec.Status != history.StatusPending {
		t.Fatalf("expected pending status, got %q", rec.Status)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps, got %+v", rec)
	}

	fetched, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched == nil || fetched.Speaker != "Esther Li" || fetched.RunID != "run-1" {
		t.Fatalf("unexpected fetched record: %#v", fetched)
	}
	if store.Path() != cfg.HistoryDBPath() {
		t.Fatalf("unexpected db path %q", store.Path())
	}
}

func TestCreateRequiresURL(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.Create(context.Background(), &history.Record{Title: "no url"}); err == nil {
		t.Fatal("expected error when url missing")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	rec, err := store.Get(context.Background(), 999)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %#v", rec)
	}
}

func TestUpdatePersistsProgress(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	rec := testsupport.NewRecord(t, store, "https://example.com/v/1", "Talk")

	rec.Status = history.StatusTranscribing
	rec.VideoPath = "/captures/Talk/Talk.mp4"
	rec.AudioPath = "/captures/Talk/Talk.mp3"
	before := rec.UpdatedAt
	if err := store.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !rec.UpdatedAt.After(before) && !rec.UpdatedAt.Equal(before) {
		t.Fatalf("UpdatedAt moved backwards: %v -> %v", before, rec.UpdatedAt)
	}

	fetched, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Status != history.StatusTranscribing {
		t.Fatalf("status not persisted: %q", fetched.Status)
	}
	if fetched.VideoPath != rec.VideoPath || fetched.AudioPath != rec.AudioPath {
		t.Fatalf("paths not persisted: %#v", fetched)
	}
	if fetched.TranscriptPath != "" {
		t.Fatalf("expected empty transcript path, got %q", fetched.TranscriptPath)
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	err := store.Update(context.Background(), &history.Record{ID: 42, URL: "x", Status: history.StatusFailed})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	statuses := []history.Status{history.StatusCompleted, history.StatusFailed, history.StatusCompleted, history.StatusReview}
	for i, status := range statuses {
		rec := testsupport.NewRecord(t, store, "https://example.com/v/"+string(rune('a'+i)), "Talk")
		rec.Status = status
		if err := store.Update(ctx, rec); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Fatalf("expected oldest first ordering, got ids %d then %d", all[i-1].ID, all[i].ID)
		}
	}

	completed, err := store.List(ctx, history.StatusCompleted)
	if err != nil {
		t.Fatalf("List completed failed: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed, got %d", len(completed))
	}

	problems, err := store.List(ctx, history.StatusFailed, history.StatusReview)
	if err != nil {
		t.Fatalf("List failed/review failed: %v", err)
	}
	if len(problems) != 2 {
		t.Fatalf("expected 2 failed or review records, got %d", len(problems))
	}

	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	want := history.Summary{Total: 4, Completed: 2, Failed: 1, Review: 1}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
}

func TestLatestByURL(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewRecord(t, store, "https://example.com/v/1", "first")
	second := testsupport.NewRecord(t, store, "https://example.com/v/1", "second")

	latest, err := store.LatestByURL(ctx, "https://example.com/v/1")
	if err != nil {
		t.Fatalf("LatestByURL failed: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Fatalf("expected latest record %d, got %#v", second.ID, latest)
	}

	none, err := store.LatestByURL(ctx, "https://example.com/v/missing")
	if err != nil || none != nil {
		t.Fatalf("expected nil, nil for unknown url, got %#v, %v", none, err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := testsupport.NewRecord(t, store, "https://example.com/v/1", "one")
	testsupport.NewRecord(t, store, "https://example.com/v/2", "two")
	testsupport.NewRecord(t, store, "https://example.com/v/3", "three")

	removed, err := store.Remove(ctx, first.ID)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v; want true, nil", removed, err)
	}
	removed, err = store.Remove(ctx, first.ID)
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v; want false, nil", removed, err)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared, got %d", cleared)
	}
	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty history, got %d", len(remaining))
	}
}

func TestResetInterrupted(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	cases := []struct {
		initial history.Status
		want    history.Status
	}{
		{history.StatusPending, history.StatusPending},
		{history.StatusDownloading, history.StatusFailed},
		{history.StatusExtracting, history.StatusFailed},
		{history.StatusTranscribing, history.StatusFailed},
		{history.StatusCompleted, history.StatusCompleted},
	}
	ids := make([]int64, len(cases))
	for i, tc := range cases {
		rec := testsupport.NewRecord(t, store, "https://example.com/v/"+string(tc.initial), "Talk")
		rec.Status = tc.initial
		if err := store.Update(ctx, rec); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids[i] = rec.ID
	}

	n, err := store.ResetInterrupted(ctx)
	if err != nil {
		t.Fatalf("ResetInterrupted failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 reset records, got %d", n)
	}
	for i, tc := range cases {
		rec, err := store.Get(ctx, ids[i])
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if rec.Status != tc.want {
			t.Fatalf("%s: status = %q, want %q", tc.initial, rec.Status, tc.want)
		}
		if tc.want == history.StatusFailed && rec.ErrorMessage != history.InterruptedReason {
			t.Fatalf("%s: error message = %q", tc.initial, rec.ErrorMessage)
		}
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if _, err := store.Create(context.Background(), &history.Record{URL: "https://example.com/v/1"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	records, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after reopen, got %d", len(records))
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := history.OpenPath(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := store.Create(ctx, &history.Record{URL: "https://example.com/v/" + string(rune('a'+i))})
			if err != nil {
				errs <- err
				return
			}
			rec.Status = history.StatusCompleted
			if err := store.Update(ctx, rec); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent write failed: %v", err)
	}

	completed, err := store.List(ctx, history.StatusCompleted)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(completed) != 8 {
		t.Fatalf("expected 8 completed, got %d", len(completed))
	}
}

func TestParseStatus(t *testing.T) {
	got, err := history.ParseStatus(" Completed ")
	if err != nil || got != history.StatusCompleted {
		t.Fatalf("ParseStatus = %q, %v", got, err)
	}
	if _, err := history.ParseStatus("encoding"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !history.StatusExtracting.IsProcessing() || history.StatusPending.IsProcessing() {
		t.Fatal("unexpected IsProcessing result")
	}
	if !history.StatusReview.IsTerminal() || history.StatusDownloading.IsTerminal() {
		t.Fatal("unexpected IsTerminal result")
	}
}
