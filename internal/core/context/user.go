// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"registrar/internal/core/id"
)

// Roles known to the authorization policies.
const (
	RoleAdmin     = "admin"
	RoleProfessor = "professor"
	RoleStudent   = "student"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID    id.ID
	Email     string
	Role      string
	IsAdmin   bool
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// ActorID returns the authenticated user's ID, or the nil ID when the request
// is anonymous. Services pass the result explicitly to uow.Commit.
func ActorID(ctx context.Context) id.ID {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return id.Nil()
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.IsAdmin || u.Role == role
}
