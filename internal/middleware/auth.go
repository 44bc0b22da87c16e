package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/database"
	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/CollinsRutto/realtorgpt/internal/request"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error)
}

// Auth creates authentication middleware that requires a valid Supabase JWT.
// Requests without one get 401 with a flat error body.
func Auth(users database.UserRepositoryInterface, verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := authenticate(r, users, verifier, logger)
			if !ok {
				respondErrorJSON(w, http.StatusUnauthorized, "Unauthorized", logger)
				return
			}
			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth resolves the user when a valid token is present and treats
// everything else as anonymous. A malformed or expired token never blocks
// the request; it just doesn't identify anyone.
func OptionalAuth(users database.UserRepositoryInterface, verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := authenticate(r, users, verifier, logger); ok {
				r = r.WithContext(request.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate extracts and verifies the bearer token, then upserts the
// matching user row. Returns false for any missing or invalid credential.
func authenticate(r *http.Request, users database.UserRepositoryInterface, verifier TokenVerifier, logger *zap.Logger) (*models.User, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}

	ctx := r.Context()
	claims, err := verifier.Verify(ctx, parts[1])
	if err != nil {
		logger.Debug("token_verification_failed", zap.Error(err))
		return nil, false
	}

	user, err := users.GetByProviderID(ctx, claims.Sub)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Error("user_lookup_failed", zap.Error(err))
			return nil, false
		}
		user = &models.User{
			ID:            uuid.New(),
			Email:         claims.Email,
			ProviderID:    &claims.Sub,
			EmailVerified: true,
		}
		if claims.Name != "" {
			name := claims.Name
			user.Name = &name
		}
		if err := users.Create(ctx, user); err != nil {
			logger.Error("user_create_failed", zap.Error(err))
			return nil, false
		}
		return user, true
	}

	// Keep email and name current with the identity provider.
	updateNeeded := false
	if claims.Email != "" && user.Email != claims.Email {
		user.Email = claims.Email
		updateNeeded = true
	}
	if claims.Name != "" && (user.Name == nil || *user.Name != claims.Name) {
		name := claims.Name
		user.Name = &name
		updateNeeded = true
	}
	if updateNeeded {
		if err := users.Update(ctx, user); err != nil {
			logger.Warn("user_update_failed", zap.Error(err))
		}
	}
	return user, true
}
