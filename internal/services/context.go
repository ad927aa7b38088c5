package services

import "context"

type contextKey string

const (
	jobIDKey     contextKey = "job_id"
	taskIndexKey contextKey = "task_index"
	requestIDKey contextKey = "request_id"
)

// WithJobID annotates context with the download job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the download job identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTaskIndex annotates context with the 1-based task position inside a job.
func WithTaskIndex(ctx context.Context, index int) context.Context {
	if index <= 0 {
		return ctx
	}
	return context.WithValue(ctx, taskIndexKey, index)
}

// TaskIndexFromContext returns the task position if present.
func TaskIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(taskIndexKey).(int)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
