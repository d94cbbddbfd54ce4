package logging

import (
	"context"
	"log/slog"

	"reqforge/internal/services"
)

// Shared attribute keys so log lines stay greppable across components.
const (
	FieldComponent     = "component"
	FieldRecordID      = "record_id"
	FieldStep          = "step"
	FieldBatchID       = "batch_id"
	FieldCorrelationID = "correlation_id"
	FieldStatus        = "status"
	FieldDuration      = "duration"
	FieldError         = "error"
	FieldCount         = "count"
	FieldPath          = "path"
)

// ContextFields extracts the identifiers stored in ctx as log attributes.
func ContextFields(ctx context.Context) []Attr {
	var attrs []Attr
	if id, ok := services.RecordIDFrom(ctx); ok {
		attrs = append(attrs, String(FieldRecordID, id))
	}
	if step, ok := services.StepFrom(ctx); ok {
		attrs = append(attrs, String(FieldStep, step))
	}
	if id, ok := services.BatchIDFrom(ctx); ok {
		attrs = append(attrs, String(FieldBatchID, id))
	}
	if id, ok := services.RequestIDFrom(ctx); ok {
		attrs = append(attrs, String(FieldCorrelationID, id))
	}
	return attrs
}

// WithContext returns logger extended with every identifier found in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
