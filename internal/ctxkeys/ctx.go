package ctxkeys

import (
	"context"

	"github.com/templui/coachflow/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	IdentityKey  contextKey = "identity"
	RequestIDKey contextKey = "request_id"
)

func Identity(ctx context.Context) *model.Identity {
	identity, _ := ctx.Value(IdentityKey).(*model.Identity)
	return identity
}

func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
