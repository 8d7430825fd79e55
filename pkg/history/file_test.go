package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func entryAt(id string, ts time.Time) Entry {
	return Entry{
		ID:              id,
		CreatedAt:       ts,
		BaselineDir:     "frames/original",
		CandidateDir:    "frames/optimized",
		BaselineMeanMS:  20,
		CandidateMeanMS: 15,
		ImprovementPct:  25,
		MeanScore:       0.98,
		Pairs:           120,
	}
}

func TestFileStoreAppendAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "runs.jsonl")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		if err := s.Append(ctx, entryAt(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Append(%s) error: %v", id, err)
		}
	}

	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	// Newest first.
	if entries[0].ID != "run-3" || entries[2].ID != "run-1" {
		t.Errorf("order = [%s %s %s], want newest first", entries[0].ID, entries[1].ID, entries[2].ID)
	}
	if entries[0].ImprovementPct != 25 {
		t.Errorf("ImprovementPct = %v, want 25", entries[0].ImprovementPct)
	}
}

func TestFileStoreListLimit(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, entryAt("run", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() on missing file error: %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %v, want nil", entries)
	}
}

func TestFileStoreCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{broken\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(context.Background(), 0); err == nil {
		t.Error("List() should fail on corrupt history")
	}
}
