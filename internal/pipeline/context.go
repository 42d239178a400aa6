package pipeline

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	stageKey contextKey = "stage"
	runIDKey contextKey = "run_id"
)

// WithStage annotates context with the executing stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with a stage-run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(runIDKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// NewRunContext stamps a fresh run id and stage name onto ctx and returns
// both the derived context and the id.
func NewRunContext(ctx context.Context, stage string) (context.Context, string) {
	id := uuid.NewString()
	return WithRunID(WithStage(ctx, stage), id), id
}
