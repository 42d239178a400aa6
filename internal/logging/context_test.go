package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"fieldstack/internal/pipeline"
)

func TestContextFields(t *testing.T) {
	if fields := ContextFields(context.Background()); len(fields) != 0 {
		t.Fatalf("fields = %v, want none for a bare context", fields)
	}

	ctx, id := pipeline.NewRunContext(context.Background(), "source-stack")
	fields := ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("fields = %v, want stage and run id", fields)
	}
	if fields[0].Key != FieldStage || fields[0].Value.String() != "source-stack" {
		t.Fatalf("fields[0] = %v", fields[0])
	}
	if fields[1].Key != FieldRunID || fields[1].Value.String() != id {
		t.Fatalf("fields[1] = %v", fields[1])
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	ctx := pipeline.WithStage(context.Background(), "dropout-correct")
	WithContext(ctx, base).Info("starting")

	if !strings.Contains(buf.String(), FieldStage+"=dropout-correct") {
		t.Fatalf("output = %q, want stage attr", buf.String())
	}

	if WithContext(context.Background(), nil) == nil {
		t.Fatal("nil logger must fall back to the nop logger")
	}
}
