package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/types"
)

// Authenticate requires a valid session token, read from the ACCESS_TOKEN
// cookie or an Authorization bearer header, and stores the caller identity
// in the request context. It does not touch the database.
func Authenticate(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := requestToken(r)
			if raw == "" {
				writeError(w, r, apperr.Unauthorized("authentication required"))
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				writeError(w, r, apperr.Unauthorized("invalid or expired token"))
				return
			}
			id, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				writeError(w, r, apperr.Unauthorized("invalid or expired token"))
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: id, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers whose role differs from role.
func RequireRole(role types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := identity(r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if id.Role != role {
				writeError(w, r, apperr.Forbidden("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestToken(r *http.Request) string {
	if c, err := r.Cookie(auth.TokenCookieName); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
