package logger

import "context"

type contextKey string

const (
	loggerKey contextKey = "snapmerge.logger"
	runIDKey  contextKey = "snapmerge.run_id"
	stageKey  contextKey = "snapmerge.stage"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRunID tags the context with a merge run id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the run id from context.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// WithStage tags the context with the current pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext extracts the pipeline stage from context.
func StageFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(stageKey).(string); ok {
		return s
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger
// with the run id and stage from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if id := RunIDFromContext(ctx); id != "" {
		l = l.With("run_id", id)
	}
	if s := StageFromContext(ctx); s != "" {
		l = l.With("stage", s)
	}

	return l
}
