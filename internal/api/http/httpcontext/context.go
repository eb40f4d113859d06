// Package httpcontext moves the resolved session in and out of request
// contexts.
package httpcontext

import (
	"context"

	"github.com/awelch/personal-site/internal/model"
)

type contextKey int

const sessionKey contextKey = iota

// Manager implements model.ContextManager over context values.
type Manager struct{}

var _ model.ContextManager = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{}
}

// SetSessionToContext returns a context carrying the session.
func (m *Manager) SetSessionToContext(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSessionFromContext retrieves the session set by the authenticate
// middleware, reporting whether one was present.
func (m *Manager) GetSessionFromContext(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionKey).(model.Session)
	return session, ok
}
