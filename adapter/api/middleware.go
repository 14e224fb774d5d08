package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	identityDomain "github.com/daybreakhq/daybreak/internal/identity/domain"
)

type userContextKey struct{}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *identityDomain.User {
	user, _ := ctx.Value(userContextKey{}).(*identityDomain.User)
	return user
}

// authMiddleware resolves the bearer token to a user. Token issuance lives
// outside Daybreak; here a token is only a lookup key.
func authMiddleware(users identityDomain.UserRepository, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, err := users.FindByAPIToken(r.Context(), token)
		if err != nil {
			logger.Debug("token lookup failed", "error", err)
			writeError(w, http.StatusUnauthorized, "Invalid authentication token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs each request at debug level.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
		)
	})
}
