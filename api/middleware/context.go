package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/internal/access"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgerrors "github.com/gegsoft/paytrack-backend/pkg/errors"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxUsername contextKey = "username"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
)

// WithActor seeds the context with the authenticated caller's identity.
func WithActor(ctx context.Context, actor access.Actor, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.UserID.String())
	ctx = context.WithValue(ctx, ctxUsername, actor.Username)
	ctx = context.WithValue(ctx, ctxRole, string(actor.Role))
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// ActorFromContext rebuilds the caller from the values the auth middleware
// stored. Handlers behind the auth middleware can rely on it succeeding.
func ActorFromContext(ctx context.Context) (access.Actor, error) {
	if ctx == nil {
		return access.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	rawID, _ := ctx.Value(ctxUserID).(string)
	if rawID == "" {
		return access.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return access.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	username, _ := ctx.Value(ctxUsername).(string)
	rawRole, _ := ctx.Value(ctxRole).(string)
	role := enums.Role(rawRole)
	if !role.IsValid() {
		return access.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid role")
	}
	return access.Actor{UserID: userID, Username: username, Role: role}, nil
}

// AccessIDFromContext returns the JWT jti tied to the current session.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}
