package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"

	"github.com/sabo-arena/arena-bracket/internal/config"
	"github.com/sabo-arena/arena-bracket/internal/httputil"
	"github.com/sabo-arena/arena-bracket/internal/store"
	users "github.com/sabo-arena/arena-bracket/internal/user"
)

type ContextKey string

const UserIDKey ContextKey = "userID"

// SessionUserKey is the scs session key holding the operator id.
const SessionUserKey = "userID"

// oauthStateMaxAge bounds the round trip to the provider, in seconds.
const oauthStateMaxAge = 600

// InitAuth registers the configured OAuth providers with goth and returns
// their names.
func InitAuth(cfg config.AuthConfig) []string {
	var providers []goth.Provider
	if cfg.DiscordEnabled() {
		providers = append(providers, discord.New(cfg.DiscordKey, cfg.DiscordSecret, cfg.DiscordCallbackURL, discord.ScopeIdentify, discord.ScopeEmail))
	}
	if cfg.GoogleEnabled() {
		providers = append(providers, google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.GoogleCallbackURL, "email", "profile"))
	}
	goth.UseProviders(providers...)

	if cfg.SessionSecret != "" {
		store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
		store.MaxAge(oauthStateMaxAge)
		store.Options.HttpOnly = true
		gothic.Store = store
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return names
}

// RequireAuth rejects requests without an operator session and puts the
// operator into the request context.
func RequireAuth(sessionManager *scs.SessionManager, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIDStr := sessionManager.GetString(r.Context(), SessionUserKey)
			if userIDStr == "" {
				httputil.Unauthorized(w, "login required")
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				sessionManager.Remove(r.Context(), SessionUserKey)
				httputil.Unauthorized(w, "invalid session")
				return
			}

			user, err := userStore.GetUser(r.Context(), userID)
			if err != nil {
				sessionManager.Remove(r.Context(), SessionUserKey)
				httputil.Unauthorized(w, "unknown operator")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser stores the operator and its id in ctx.
func WithUser(ctx context.Context, user *users.User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	return context.WithValue(ctx, users.UserKey, user)
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(UserIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	return id, ok
}

// GetAuthenticatedUser returns the operator RequireAuth loaded, or nil.
func GetAuthenticatedUser(ctx context.Context) *users.User {
	user, ok := ctx.Value(users.UserKey).(*users.User)
	if !ok {
		return nil
	}
	return user
}
