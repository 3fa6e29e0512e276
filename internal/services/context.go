package services

import (
	"context"
	"strings"
)

// contextKey is unexported so only this package can set these values.
type contextKey struct{ name string }

var (
	stageKey     = &contextKey{"stage"}
	requestIDKey = &contextKey{"request_id"}
)

// WithStage records the assessment stage (stage, transcribe, evaluate).
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage recorded by WithStage.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKey)
}

// WithRequestID records the correlation id of one assessment.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the id recorded by WithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}

func withString(ctx context.Context, key *contextKey, value string) context.Context {
	if value = strings.TrimSpace(value); value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key *contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}
