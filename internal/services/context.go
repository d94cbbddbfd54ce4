package services

import "context"

type contextKey string

const (
	recordIDKey  contextKey = "record_id"
	stepKey      contextKey = "step"
	batchIDKey   contextKey = "batch_id"
	requestIDKey contextKey = "request_id"
)

// WithRecordID attaches a record identifier to the context.
func WithRecordID(ctx context.Context, recordID string) context.Context {
	if recordID == "" {
		return ctx
	}
	return context.WithValue(ctx, recordIDKey, recordID)
}

// RecordIDFrom extracts the record identifier from the context, if any.
func RecordIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, recordIDKey)
}

// WithStep attaches the current pipeline step name to the context.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFrom extracts the pipeline step name from the context, if any.
func StepFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stepKey)
}

// WithBatchID attaches a batch run identifier to the context.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	if batchID == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, batchID)
}

// BatchIDFrom extracts the batch run identifier from the context, if any.
func BatchIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, batchIDKey)
}

// WithRequestID attaches a correlation identifier to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom extracts the correlation identifier from the context, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
