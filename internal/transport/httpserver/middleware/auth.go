package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	userdomain "family-recipes-go/internal/domain/user"
	"family-recipes-go/pkg/logger"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*userdomain.User, error)
}

type Auth struct {
	users Authenticator
	log   logger.Logger
}

type contextKey int

const (
	userIDKey contextKey = iota
	userKey
)

type User struct {
	ID       string
	Email    string
	Name     string
	PhotoURL *string
}

func NewAuth(users Authenticator, log logger.Logger) *Auth {
	return &Auth{users: users, log: log}
}

// Required rejects requests without a valid bearer token.
func (a *Auth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		user, err := a.users.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, userdomain.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}
			logger.FromContext(r.Context(), a.log).InternalError("auth: authenticate failed", err, "path", r.URL.Path)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(withAuthenticated(r.Context(), user)))
	})
}

// Optional attaches the caller when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.users.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, userdomain.ErrUnauthenticated) {
				logger.FromContext(r.Context(), a.log).InternalError("auth: authenticate failed", err, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withAuthenticated(r.Context(), user)))
	})
}

func withAuthenticated(ctx context.Context, user *userdomain.User) context.Context {
	return WithUser(ctx, User{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		PhotoURL: user.PhotoURL,
	})
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, userIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

// UserIDFromContext returns "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
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
