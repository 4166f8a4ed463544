package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-orders/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.ActorRole); ok {
		return v
	}
	return ""
}

// Actor is the authenticated caller as seen by handlers.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// ActorFromContext returns the caller, or false for anonymous requests.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return Actor{}, false
	}
	role := RoleFromContext(ctx)
	if !role.IsValid() {
		return Actor{}, false
	}
	return Actor{UserID: id, Role: role}, true
}

// WithActor injects an authenticated caller into the context.
func WithActor(ctx context.Context, userID string, role enums.ActorRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}
