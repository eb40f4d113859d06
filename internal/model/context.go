package model

import "context"

// ContextManager moves the resolved session in and out of request
// contexts.
type ContextManager interface {
	SetSessionToContext(ctx context.Context, session Session) context.Context
	GetSessionFromContext(ctx context.Context) (Session, bool)
}
