package pipeline

import (
	"context"
	"testing"
)

func TestStageContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := StageFromContext(ctx); ok {
		t.Fatal("empty context must not carry a stage")
	}

	ctx = WithStage(ctx, "source-stack")
	stage, ok := StageFromContext(ctx)
	if !ok || stage != "source-stack" {
		t.Fatalf("StageFromContext = %q, %v", stage, ok)
	}

	// Empty names do not overwrite.
	if got, _ := StageFromContext(WithStage(ctx, "")); got != "source-stack" {
		t.Fatalf("stage = %q after empty WithStage", got)
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	id, ok := RunIDFromContext(ctx)
	if !ok || id != "run-1" {
		t.Fatalf("RunIDFromContext = %q, %v", id, ok)
	}
	if _, ok := RunIDFromContext(context.Background()); ok {
		t.Fatal("empty context must not carry a run id")
	}
}

func TestNewRunContext(t *testing.T) {
	ctx, id := NewRunContext(context.Background(), "dropout-correct")
	if id == "" {
		t.Fatal("run id must not be empty")
	}
	gotID, _ := RunIDFromContext(ctx)
	gotStage, _ := StageFromContext(ctx)
	if gotID != id || gotStage != "dropout-correct" {
		t.Fatalf("context carries %q/%q, want %q/dropout-correct", gotStage, gotID, id)
	}

	_, other := NewRunContext(context.Background(), "dropout-correct")
	if other == id {
		t.Fatal("run ids must be unique per run")
	}
}
