package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	authdomain "family-directory-go/internal/domain/auth"
	"family-directory-go/pkg/logger"
)

type contextKey int

const userKey contextKey = iota

// SessionAuth resolves the caller from the opaque session cookie and
// injects the User into the request context.
type SessionAuth struct {
	auth       *authdomain.Service
	cookieName string
	log        logger.Logger
}

func NewSessionAuth(auth *authdomain.Service, cookieName string, log logger.Logger) *SessionAuth {
	return &SessionAuth{auth: auth, cookieName: cookieName, log: log}
}

func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(a.cookieName)
		if err != nil || cookie.Value == "" {
			unauthorized(w)
			return
		}

		user, err := a.auth.CurrentUser(r.Context(), cookie.Value)
		if err != nil {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin gates a route group to admin callers. Must run after
// the session middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if err := authdomain.RequireRole(user, authdomain.RoleAdmin); err != nil {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, user *authdomain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (*authdomain.User, bool) {
	user, ok := ctx.Value(userKey).(*authdomain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
