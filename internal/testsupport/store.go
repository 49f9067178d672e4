package testsupport

import (
	"context"
	"testing"

	"talkscout/internal/config"
	"talkscout/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRecord creates a pending capture record for tests.
func NewRecord(t testing.TB, store *history.Store, url, title string) *history.Record {
	t.Helper()

	rec, err := store.Create(context.Background(), &history.Record{URL: url, Title: title})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return rec
}
