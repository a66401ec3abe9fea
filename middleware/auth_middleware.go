package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/utils"
	"go.uber.org/zap"
)

// TokenValidator verifies a session token and resolves the account it
// names
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware resolves session tokens into a request principal
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// authTokenCookieName is the cookie fallback for browser clients; the
// Authorization header takes precedence when both are present
const authTokenCookieName = "auth_token"

// RequireAuth rejects requests that do not carry a valid session token.
// The resolved principal is stored in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := extractToken(r)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", GetRequestIDFromContext(ctx)))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		principal, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx = WithPrincipal(ctx, principal)

		m.logger.Debug("authentication successful",
			zap.String("request_id", GetRequestIDFromContext(ctx)),
			zap.String("user_id", principal.ID.String()),
			zap.String("role", string(principal.Role)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth resolves a principal when a valid token is present and
// lets the request through anonymously otherwise. A token that is
// present but invalid leaves the request anonymous rather than failing
// it; the service layer decides what an anonymous caller may see.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := extractToken(r)
		if token != "" {
			principal, err := m.validator.ValidateToken(ctx, token)
			if err == nil {
				ctx = WithPrincipal(ctx, principal)
			} else {
				m.logger.Debug("ignoring invalid token on optional route",
					zap.String("request_id", GetRequestIDFromContext(ctx)),
					zap.Error(err))
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole requires the principal to hold the given role. Must run
// after RequireAuth.
func (m *AuthMiddleware) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal := GetPrincipal(ctx)
			if principal == nil {
				m.logger.Error("principal not found in context",
					zap.String("request_id", GetRequestIDFromContext(ctx)))
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			if principal.Role != role {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", GetRequestIDFromContext(ctx)),
					zap.String("required_role", string(role)),
					zap.String("user_role", string(principal.Role)))
				_ = utils.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the session token from the Authorization header
// ("Bearer TOKEN") or the auth_token cookie
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(authTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
