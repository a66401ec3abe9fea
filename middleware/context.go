package middleware

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/openlearn/openlearn-backend/models"
)

// Context key type to avoid collisions
type contextKey string

// PrincipalKey is the context key for the authenticated user
const PrincipalKey contextKey = "principal"

// GetRequestIDFromContext retrieves the request ID set by the chi
// RequestID middleware, or "" when the middleware did not run
func GetRequestIDFromContext(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}

// GetPrincipal retrieves the authenticated user from context. A nil
// return means the request is anonymous.
func GetPrincipal(ctx context.Context) *models.User {
	if val := ctx.Value(PrincipalKey); val != nil {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

// WithPrincipal adds the authenticated user to the context
func WithPrincipal(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, PrincipalKey, user)
}
