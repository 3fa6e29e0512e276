package logging

import (
	"context"
	"log/slog"

	"pronounce/internal/services"
)

// Standard structured logging keys.
const (
	FieldComponent     = "component"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldImpact        = "impact"

	FieldAudio       = "audio"
	FieldAudioSHA256 = "audio_sha256"
	FieldReference   = "reference"
	FieldTranscript  = "transcript"
	FieldJobID       = "job_id"
	FieldLanguage    = "language"
	FieldCacheHit    = "cache_hit"
	FieldRows        = "rows"
	FieldWER         = "wer"
)

// ContextFields extracts standardized slog attributes from ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(toArgs(fields)...)
}
