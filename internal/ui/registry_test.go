package ui

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/mocks"
	"github.com/awelch/personal-site/internal/model"
	"github.com/awelch/personal-site/internal/service"
)

func newRegistryFixture() (*Registry, *scriptedSource) {
	source := newScriptedSource(func(int) (model.Session, error) {
		return model.Session{}, model.ErrSessionMissing
	})
	log := logger.New(0)
	profiles := service.NewProfile(&mocks.ProfileStore{}, &mocks.Storage{}, log)
	notes := service.NewNote(&mocks.NoteStore{}, log)
	return NewRegistry(source, profiles, notes, log), source
}

func TestRegistry_ForReturnsSameStatePerUser(t *testing.T) {
	r, _ := newRegistryFixture()
	defer r.Close()

	session := model.Session{UserID: uuid.New(), Email: "a@b.c"}
	state := r.For(session)
	require.NotNil(t, state.Editor)
	require.NotNil(t, state.Notes)
	require.NotNil(t, state.Navbar)
	require.NotNil(t, state.Theme)

	assert.Same(t, state, r.For(session))
}

func TestRegistry_StateIsPerUser(t *testing.T) {
	r, _ := newRegistryFixture()
	defer r.Close()

	first := r.For(model.Session{UserID: uuid.New()})
	second := r.For(model.Session{UserID: uuid.New()})
	assert.NotSame(t, first, second)
}

func TestRegistry_SignOutEvictsState(t *testing.T) {
	r, source := newRegistryFixture()
	defer r.Close()

	session := model.Session{UserID: uuid.New(), Email: "a@b.c"}
	before := r.For(session)

	source.emit(model.AuthEvent{Type: model.AuthEventSignedOut, Session: model.Session{UserID: session.UserID}})

	after := r.For(session)
	assert.NotSame(t, before, after)
}

func TestRegistry_SignOutOfOtherUserKeepsState(t *testing.T) {
	r, source := newRegistryFixture()
	defer r.Close()

	session := model.Session{UserID: uuid.New(), Email: "a@b.c"}
	before := r.For(session)

	source.emit(model.AuthEvent{Type: model.AuthEventSignedOut, Session: model.Session{UserID: uuid.New()}})

	assert.Same(t, before, r.For(session))
}
