package metadatastore

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.sqlite3")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpsertAndGet(t *testing.T) {
	store := newTestStore(t)

	want := TokenMetadata{
		MintAddress: "MintA",
		Name:        "Widget",
		Symbol:      "WDG",
		URI:         "https://example.test/widget.json",
		Image:       "https://example.test/widget.png",
	}
	if err := store.Upsert(want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Get("MintA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != want {
		t.Errorf("Get() = %+v, want %+v", *got, want)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	store := newTestStore(t)

	store.Upsert(TokenMetadata{MintAddress: "MintA", Name: "Old", Symbol: "OLD", URI: "u1", Image: "i1"})
	store.Upsert(TokenMetadata{MintAddress: "MintA", Name: "New", Symbol: "NEW", URI: "u2", Image: "i2"})

	got, err := store.Get("MintA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "New" || got.Symbol != "NEW" {
		t.Errorf("Get() = %+v, want replaced values", *got)
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}
