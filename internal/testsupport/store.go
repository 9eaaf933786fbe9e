package testsupport

import (
	"context"
	"testing"

	"imagemill/internal/batch"
)

// MustOpenStore opens a batch.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB) *batch.Store {
	t.Helper()

	store, err := batch.Open()
	if err != nil {
		t.Fatalf("batch.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddItem inserts a pending item for tests using the provided store.
func AddItem(t testing.TB, store *batch.Store, sourcePath, sourceName string) *batch.Item {
	t.Helper()

	item, err := store.Add(context.Background(), batch.NewItem{
		SourcePath: sourcePath,
		SourceName: sourceName,
		SourceType: "image/png",
	})
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return item
}
