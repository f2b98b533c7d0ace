package rbac

import "context"

type contextKey int

const ctxRole contextKey = iota

// ContextWithRole records the role an authorization check resolved.
func ContextWithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, ctxRole, role)
}

// RoleFromContext returns the role stored by ContextWithRole.
func RoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(ctxRole).(Role)
	return role, ok
}
