package runstore

import (
	"context"
	"testing"
	"time"

	"structuralign/pkg/config"
	"structuralign/pkg/report"
)

func TestFileStore_SaveGet(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	run := &Run{
		ID:        "run-1",
		InputPath: "building.model",
		InputHash: "abc123",
		Config:    config.Default(),
		StartedAt: time.Now().Truncate(time.Millisecond),
		Duration:  2 * time.Second,
		Report:    report.Report{ElementCount: 4},
	}

	ctx := context.Background()
	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.InputHash != run.InputHash || got.Report.ElementCount != 4 {
		t.Errorf("Get() = %+v, want matching fields of %+v", got, run)
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	if _, err := store.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestNewID_ReturnsUniqueValues(t *testing.T) {
	a, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	b, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if a == b {
		t.Errorf("NewID returned the same value twice: %q", a)
	}
	if a == "" {
		t.Error("NewID returned an empty string")
	}
}

func TestFileStore_ListOrdersNewestFirst(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	older := &Run{ID: "older", StartedAt: time.Now().Add(-time.Hour)}
	newer := &Run{ID: "newer", StartedAt: time.Now()}
	if err := store.Save(ctx, older); err != nil {
		t.Fatalf("Save older: %v", err)
	}
	if err := store.Save(ctx, newer); err != nil {
		t.Fatalf("Save newer: %v", err)
	}

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "newer" {
		t.Errorf("List() = %v, want [newer, older]", runs)
	}
}
