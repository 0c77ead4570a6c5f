package api

import (
	"context"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

// withUser stores the authenticated user on the request context.
func withUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// userFrom returns the authenticated user, or nil outside the auth
// middleware.
func userFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}
