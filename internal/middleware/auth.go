package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/auth"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
	"github.com/gorilla/mux"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
	Role   models.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// UserLoader resolves the user behind a token so deactivated accounts and
// role changes take effect before the token expires.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Auth requires a valid bearer token issued to an active user.
func Auth(tokens *auth.TokenManager, users UserLoader) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(header, "Bearer ") {
				utils.WriteError(w, utils.NewUnauthorizedError("Missing or invalid token"))
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
			if err != nil {
				message := "Missing or invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					message = "Token expired"
				}
				utils.WriteError(w, utils.NewUnauthorizedError(message))
				return
			}

			user, err := users.GetByID(r.Context(), claims.Sub)
			if err != nil {
				utils.WriteError(w, utils.NewInternalError("Failed to load user"))
				return
			}
			if user == nil || !user.IsActive {
				utils.WriteError(w, utils.NewUnauthorizedError("User not found or inactive"))
				return
			}

			identity := Identity{UserID: user.ID, Email: user.Email, Role: user.Role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole lets the request through only when the caller has one of roles.
func RequireRole(roles ...models.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				utils.WriteError(w, utils.NewUnauthorizedError("Missing or invalid token"))
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.WriteError(w, utils.NewForbiddenError("Insufficient permissions"))
		})
	}
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
