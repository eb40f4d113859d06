package ui

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
)

// ProfileLoader loads the stored profile behind an identity.
type ProfileLoader interface {
	Load(ctx context.Context, userID uuid.UUID) (model.Profile, error)
}

// Identity is what the navbar shows for the signed-in viewer.
type Identity struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	AvatarURL   string
}

// Navbar holds the header identity. Each identity change issues a
// profile load tagged with a monotonically increasing request counter;
// only the response matching the latest request is applied, so a slow
// load for a previous identity can never overwrite a newer one.
type Navbar struct {
	profiles ProfileLoader
	logger   *logger.Logger

	mu       sync.Mutex
	counter  uint64
	identity Identity
}

func NewNavbar(profiles ProfileLoader, logger *logger.Logger) *Navbar {
	return &Navbar{profiles: profiles, logger: logger}
}

// Refresh loads the display name and avatar for the session's identity.
func (n *Navbar) Refresh(ctx context.Context, session model.Session) {
	n.mu.Lock()
	n.counter++
	req := n.counter
	n.mu.Unlock()

	profile, err := n.profiles.Load(ctx, session.UserID)

	n.mu.Lock()
	defer n.mu.Unlock()

	if req != n.counter {
		// A newer refresh or a sign-out superseded this load.
		return
	}

	identity := Identity{
		UserID:      session.UserID,
		Email:       session.Email,
		DisplayName: session.Email,
	}
	if err != nil {
		n.logger.Error("Navbar: profile load failed",
			"user_id", session.UserID,
			"error", err.Error())
		n.identity = identity
		return
	}

	switch {
	case profile.FullName != nil && *profile.FullName != "":
		identity.DisplayName = *profile.FullName
	case profile.Username != nil && *profile.Username != "":
		identity.DisplayName = *profile.Username
	}
	if profile.AvatarURL != nil {
		identity.AvatarURL = *profile.AvatarURL
	}

	n.identity = identity
}

// Clear drops the identity on sign-out and invalidates in-flight loads.
func (n *Navbar) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counter++
	n.identity = Identity{}
}

// Identity returns the currently applied identity.
func (n *Navbar) Identity() Identity {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.identity
}
