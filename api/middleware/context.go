package middleware

import "context"

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxRole, role)
}

func UserIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(ctxUserID).(string)
	return value
}

func RoleFromContext(ctx context.Context) string {
	value, _ := ctx.Value(ctxRole).(string)
	return value
}
