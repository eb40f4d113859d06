package ui

import (
	"sync"

	"github.com/google/uuid"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
)

// SessionState bundles the per-session view state behind the pages.
type SessionState struct {
	Editor *ProfileEditor
	Notes  *NotesList
	Navbar *Navbar
	Theme  *ThemeController
}

// Registry keys session state by user id and evicts it on sign-out. It
// subscribes to auth events for its lifetime.
type Registry struct {
	profiles ProfileBackend
	notes    NoteBackend
	logger   *logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*SessionState

	unsubscribe func()
}

// Subscriber hands out auth-state change notifications. Both the auth
// service and the session resolver implement it.
type Subscriber interface {
	Subscribe(fn func(model.AuthEvent)) func()
}

func NewRegistry(events Subscriber, profiles ProfileBackend, notes NoteBackend, logger *logger.Logger) *Registry {
	r := &Registry{
		profiles: profiles,
		notes:    notes,
		logger:   logger,
		sessions: map[uuid.UUID]*SessionState{},
	}
	r.unsubscribe = events.Subscribe(r.onAuthEvent)
	return r
}

// For returns the state for the session's user, creating it on first
// use.
func (r *Registry) For(session model.Session) *SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.sessions[session.UserID]; ok {
		return state
	}

	state := &SessionState{
		Editor: NewProfileEditor(r.profiles, session.UserID, r.logger),
		Notes:  NewNotesList(r.notes, session.UserID, r.logger),
		Navbar: NewNavbar(r.profiles, r.logger),
		Theme:  NewThemeController(),
	}
	r.sessions[session.UserID] = state
	return state
}

// Close unsubscribes and releases all session state.
func (r *Registry) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for userID := range r.sessions {
		r.evictLocked(userID)
	}
}

func (r *Registry) onAuthEvent(event model.AuthEvent) {
	if event.Type != model.AuthEventSignedOut {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(event.Session.UserID)
}

func (r *Registry) evictLocked(userID uuid.UUID) {
	state, ok := r.sessions[userID]
	if !ok {
		return
	}
	state.Editor.Close()
	state.Navbar.Clear()
	delete(r.sessions, userID)
}
