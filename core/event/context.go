package event

import (
	"context"
	"time"
)

type eventIDCtx struct{}

// WithEventID attaches an event ID to the context.
func WithEventID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, eventIDCtx{}, id)
}

// EventID extracts the event ID from the context.
// Returns empty string if not present.
func EventID(ctx context.Context) string {
	if id, ok := ctx.Value(eventIDCtx{}).(string); ok {
		return id
	}
	return ""
}

type eventNameCtx struct{}

// WithEventName attaches an event name to the context.
func WithEventName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, eventNameCtx{}, name)
}

// EventName extracts the event name from the context.
// Returns empty string if not present.
func EventName(ctx context.Context) string {
	if name, ok := ctx.Value(eventNameCtx{}).(string); ok {
		return name
	}
	return ""
}

type eventTimeCtx struct{}

// WithEventTime attaches the event creation time to the context.
func WithEventTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, eventTimeCtx{}, t)
}

// EventTime extracts the event creation time from the context.
// Returns zero time if not present.
func EventTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(eventTimeCtx{}).(time.Time); ok {
		return t
	}
	return time.Time{}
}

// WithMeta attaches all event metadata (ID, Name, CreatedAt) to the context.
// Empty fields are skipped.
func WithMeta(ctx context.Context, meta Meta) context.Context {
	if meta.ID != "" {
		ctx = WithEventID(ctx, meta.ID)
	}
	if meta.Name != "" {
		ctx = WithEventName(ctx, meta.Name)
	}
	if !meta.CreatedAt.IsZero() {
		ctx = WithEventTime(ctx, meta.CreatedAt)
	}
	return ctx
}

type dispatchIDCtx struct{}

// WithDispatchID attaches the ID of the current dispatch to the context.
// Failure handlers receive it so they can correlate with failure records.
func WithDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, dispatchIDCtx{}, id)
}

// DispatchID extracts the dispatch ID from the context.
// Returns empty string if not present.
func DispatchID(ctx context.Context) string {
	if id, ok := ctx.Value(dispatchIDCtx{}).(string); ok {
		return id
	}
	return ""
}
