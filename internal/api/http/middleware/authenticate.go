package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/awelch/personal-site/internal/api/http/session"
	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
)

// SessionResolver resolves an access token to an identity.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (model.Session, error)
}

// TokenRefresher rotates a refresh token into a fresh pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

// publicPaths need no session. Everything else redirects to the login
// surface when the viewer is unauthenticated.
var publicPaths = map[string]bool{
	"/":               true,
	"/login":          true,
	"/signup":         true,
	"/reset-password": true,
	"/confirm-email":  true,
}

// Authenticate is the route guard: it resolves the session cookie,
// transparently refreshing an expired access token, and redirects
// between the public and signed-in halves of the site.
type Authenticate struct {
	resolver      SessionResolver
	refresher     TokenRefresher
	secureCookies bool
	logger        *logger.Logger
}

// NewAuthenticate creates the route guard middleware.
func NewAuthenticate(resolver SessionResolver, refresher TokenRefresher, secureCookies bool, logger *logger.Logger) *Authenticate {
	return &Authenticate{
		resolver:      resolver,
		refresher:     refresher,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Handle guards next. Authenticated requests get the session injected
// into their context through manager; unauthenticated requests to
// protected paths are redirected to /login with the origin preserved.
func (m *Authenticate) Handle(manager model.ContextManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := m.resolveSession(w, r)

		if ok {
			if r.URL.Path == "/login" || r.URL.Path == "/signup" {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(manager.SetSessionToContext(r.Context(), sess)))
			return
		}

		if publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		target := "/login?redirectedFrom=" + url.QueryEscape(r.URL.Path)
		http.Redirect(w, r, target, http.StatusFound)
	})
}

func (m *Authenticate) resolveSession(w http.ResponseWriter, r *http.Request) (model.Session, bool) {
	access := session.AccessToken(r)
	if access != "" {
		if sess, err := m.resolver.Resolve(r.Context(), access); err == nil {
			return sess, true
		}
	}

	refresh := session.RefreshToken(r)
	if refresh == "" {
		return model.Session{}, false
	}

	newAccess, newRefresh, err := m.refresher.Refresh(r.Context(), refresh)
	if err != nil {
		m.logger.Debug("Authenticate: refresh failed",
			"error", err.Error())
		return model.Session{}, false
	}

	sess, err := m.resolver.Resolve(r.Context(), newAccess)
	if err != nil {
		return model.Session{}, false
	}

	session.Set(w, newAccess, newRefresh, m.secureCookies)
	return sess, true
}
