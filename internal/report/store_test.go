package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fieldstack/internal/logging"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.db")
	store, err := Open(context.Background(), path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if err := store.BeginRun(ctx, "run-1", "dropout-correct"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	runs, err := store.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" || runs[0].Stage != "dropout-correct" {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].FinishedAt != nil {
		t.Fatal("unfinished run must have no finish time")
	}

	counters := Counters{
		FieldsProcessed:    120,
		RegionsCorrected:   34,
		RegionsUncorrected: 2,
		SamplesDropout:     500,
		SamplesRecovered:   480,
	}
	if err := store.FinishRun(ctx, "run-1", counters); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err = store.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if runs[0].FinishedAt == nil {
		t.Fatal("finished run must record a finish time")
	}
	if runs[0].Counters != counters {
		t.Fatalf("counters = %+v, want %+v", runs[0].Counters, counters)
	}
}

func TestBeginRunRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.BeginRun(context.Background(), " ", "stage"); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestWarningsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if err := store.BeginRun(ctx, "run-1", "dropout-correct"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	warnings := []WarningRecord{
		{FieldID: 12, Channel: "composite", Line: 40, Start: 100, End: 180, Reason: "no replacement line within distance"},
		{FieldID: 12, Channel: "composite", Line: 41, Start: 100, End: 140, Reason: "no replacement line within distance"},
	}
	if err := store.AddWarnings(ctx, "run-1", warnings); err != nil {
		t.Fatalf("AddWarnings: %v", err)
	}
	if err := store.AddWarnings(ctx, "run-1", nil); err != nil {
		t.Fatalf("AddWarnings(empty): %v", err)
	}

	got, err := store.RunWarnings(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("RunWarnings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("warnings = %+v, want 2", got)
	}
	for i := range warnings {
		if got[i] != warnings[i] {
			t.Fatalf("warnings[%d] = %+v, want %+v", i, got[i], warnings[i])
		}
	}

	runs, err := store.Runs(ctx, 1)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if runs[0].Warnings != 2 {
		t.Fatalf("run warning count = %d, want 2", runs[0].Warnings)
	}
}

func TestOpenFailsWhenLocked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "report.db")

	first, err := Open(ctx, path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer first.Close()

	if _, err := Open(ctx, path, logging.NewNop()); err == nil {
		t.Fatal("second writer must fail fast while the lock is held")
	}
}

func TestOpenReopensExistingSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "report.db")

	store, err := Open(ctx, path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.BeginRun(ctx, "run-1", "source-stack"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, path, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %+v, want the persisted run", runs)
	}
}

func TestSchemaMismatchDetected(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "report.db")

	store, err := Open(ctx, path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := Open(ctx, path, logging.NewNop()); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  ", logging.NewNop()); err == nil {
		t.Fatal("expected error for empty path")
	}
}
