package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldVideoKey is the standardized structured logging key for the source video identifier.
	FieldVideoKey = "video_key"
	// FieldRunID is the standardized structured logging key for analysis run identifiers.
	FieldRunID = "run_id"
	// FieldFrame is the standardized structured logging key for frame file names.
	FieldFrame = "frame"
	// FieldEventType classifies notable log lines for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType names the kind of choice recorded by Decision.
	FieldDecisionType = "decision_type"
	// FieldDecisionResult holds the alternative that was chosen.
	FieldDecisionResult = "decision_result"
	// FieldDecisionReason says which rule picked it.
	FieldDecisionReason = "decision_reason"
)

type contextKey int

const (
	videoKeyContextKey contextKey = iota
	runIDContextKey
)

// WithVideoKey returns a context carrying the source video identifier.
func WithVideoKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, videoKeyContextKey, key)
}

// WithRunID returns a context carrying the analysis run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDContextKey, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if key, ok := ctx.Value(videoKeyContextKey).(string); ok && key != "" {
		fields = append(fields, slog.String(FieldVideoKey, key))
	}
	if id, ok := ctx.Value(runIDContextKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
