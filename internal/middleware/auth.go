// Package middleware contains the HTTP middleware chain.
//
// Middleware follows the standard pattern of wrapping http.Handler and
// is composed with Stack. The API is JSON-only; there are no redirect
// branches.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/service"
)

const (
	// SessionCookieName stores the raw session token.
	SessionCookieName = "tandem_session"

	SessionCookiePath = "/"

	// SessionCookieMaxAge matches service.SessionDuration.
	SessionCookieMaxAge = 7 * 24 * 60 * 60
)

// contextKey is a private type so context keys cannot collide.
type contextKey string

const userContextKey contextKey = "user"

// GetUser retrieves the authenticated user from the request context.
// Returns nil when the request is unauthenticated.
func GetUser(ctx context.Context) *domain.User {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

func setUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// AuthMiddleware resolves session cookies into users and enforces
// authentication and role requirements.
type AuthMiddleware struct {
	userService service.UserService
	logger      *slog.Logger
	isSecure    bool
}

// NewAuthMiddleware creates a new AuthMiddleware. isSecure should be
// true outside development so cookies carry the Secure flag.
func NewAuthMiddleware(userService service.UserService, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		userService: userService,
		logger:      logger,
		isSecure:    isSecure,
	}
}

// WithUser loads the user from the session cookie, if any, and stores
// it in the request context. It never rejects a request; unresolved
// sessions just clear the cookie and continue anonymously.
func (m *AuthMiddleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.userService.GetBySessionToken(r.Context(), cookie.Value)
		if err != nil {
			clearSessionCookie(w, m.isSecure)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(setUser(r.Context(), user)))
	})
}

// RequireUser rejects unauthenticated requests with a 401. Must run
// after WithUser.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) == nil {
			writeAuthRequired(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePlatformAdmin restricts a route to platform operators.
func (m *AuthMiddleware) RequirePlatformAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil {
			writeAuthRequired(w)
			return
		}
		if !user.IsPlatformAdmin() {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"message":   "platform administrator access required",
				"errorCode": "FORBIDDEN",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTenantRole restricts a route to users whose role can manage
// employees within their tenant. Platform admins pass.
func (m *AuthMiddleware) RequireTenantRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil {
			writeAuthRequired(w)
			return
		}
		if !user.IsPlatformAdmin() && !user.CanManageEmployees() {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"message":   "insufficient role for this operation",
				"errorCode": "FORBIDDEN",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie sets the session cookie after login.
func SetSessionCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     SessionCookiePath,
		MaxAge:   SessionCookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie, for logout handlers.
func ClearSessionCookie(w http.ResponseWriter, isSecure bool) {
	clearSessionCookie(w, isSecure)
}

func clearSessionCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeAuthRequired(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"message":   "authentication required",
		"errorCode": "AUTHENTICATION_REQUIRED",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Stack composes middleware. The first middleware in the list is the
// outermost.
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
