package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/auth"
	"github.com/sakif/recipe-share/internal/respond"
)

// TokenValidator is the part of auth.TokenService the guard needs.
type TokenValidator interface {
	Validate(token string) (int64, error)
}

// RequireAuth is the access guard for protected routes.
//
// It reads "Authorization: Bearer <jwt>", validates the token and stores the
// user id in the request context for handlers (auth.UserIDFromContext).
//
// TWO DIFFERENT REJECTIONS:
//   - No header, or not of the form "Bearer <token>" → 401 Unauthorized.
//     The client never authenticated; it should send the user to login.
//   - A token that fails validation (bad signature, expired, malformed) → 403.
//     The client has a token but it's no good; the app clears it and re-logs.
//
// Validation is synchronous and needs no DB lookup: the signature and the
// exp claim are all we check.
func RequireAuth(tokens TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respond.Error(w, logger, apperror.Unauthorized("token not provided"))
				return
			}

			userID, err := tokens.Validate(token)
			if err != nil {
				logger.Debug("rejected token", slog.String("error", err.Error()))
				respond.Error(w, logger, apperror.Forbidden("invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// bearerToken extracts <token> from "Authorization: Bearer <token>".
// The scheme is case-insensitive (RFC 7235); the token must be non-empty.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
