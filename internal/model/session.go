package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is the resolved identity of an authenticated viewer.
type Session struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// AuthEventType classifies auth-state change notifications.
type AuthEventType string

const (
	AuthEventSignedIn         AuthEventType = "signed_in"
	AuthEventSignedOut        AuthEventType = "signed_out"
	AuthEventTokenRefreshed   AuthEventType = "token_refreshed"
	AuthEventUserUpdated      AuthEventType = "user_updated"
	AuthEventPasswordRecovery AuthEventType = "password_recovery"
)

// AuthEvent is pushed to subscribers whenever the auth state changes.
// For signed_out events Session carries only the user id.
type AuthEvent struct {
	Type    AuthEventType
	Session Session
}
