package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
)

// scriptedSource is a SessionSource whose responses are driven by the
// test. Individual calls can be gated on a channel to force a specific
// interleaving.
type scriptedSource struct {
	mu      sync.Mutex
	calls   int
	handler func(call int) (model.Session, error)
	gates   map[int]chan struct{}
	subs    []func(model.AuthEvent)
}

func newScriptedSource(handler func(call int) (model.Session, error)) *scriptedSource {
	return &scriptedSource{handler: handler, gates: map[int]chan struct{}{}}
}

func (s *scriptedSource) GetUser(ctx context.Context, token string) (model.Session, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	gate := s.gates[call]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return s.handler(call)
}

func (s *scriptedSource) Subscribe(fn func(model.AuthEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	return func() {}
}

func (s *scriptedSource) emit(event model.AuthEvent) {
	s.mu.Lock()
	subs := append([]func(model.AuthEvent){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(event)
	}
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func liveSession(email string) model.Session {
	return model.Session{
		UserID:    uuid.New(),
		Email:     email,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestSessionResolver_EmptyToken(t *testing.T) {
	source := newScriptedSource(func(int) (model.Session, error) {
		return model.Session{}, model.ErrSessionMissing
	})
	r := NewSessionResolver(source, logger.New(0))
	defer r.Close()

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrSessionMissing)
	assert.Equal(t, 0, source.callCount())
}

func TestSessionResolver_MissOnceThenCached(t *testing.T) {
	session := liveSession("a@b.c")
	source := newScriptedSource(func(int) (model.Session, error) {
		return session, nil
	})
	r := NewSessionResolver(source, logger.New(0))
	defer r.Close()

	got, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)

	got, err = r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, 1, source.callCount())
}

func TestSessionResolver_NoUserIsSessionMissing(t *testing.T) {
	source := newScriptedSource(func(int) (model.Session, error) {
		return model.Session{}, model.ErrSessionMissing
	})
	r := NewSessionResolver(source, logger.New(0))
	defer r.Close()

	_, err := r.Resolve(context.Background(), "expired")
	assert.ErrorIs(t, err, model.ErrSessionMissing)
}

// erroringCache fails every read to prove resolution falls back to the
// source instead of failing.
type erroringCache struct{}

func (erroringCache) Get(string) (model.Session, bool, error) {
	return model.Session{}, false, errors.New("cache unavailable")
}
func (erroringCache) Set(string, model.Session) {}
func (erroringCache) Delete(string)             {}
func (erroringCache) Clear()                    {}

func TestSessionResolver_CacheReadErrorFallsBack(t *testing.T) {
	session := liveSession("a@b.c")
	source := newScriptedSource(func(int) (model.Session, error) {
		return session, nil
	})
	r := NewSessionResolver(source, logger.New(0))
	defer r.Close()
	r.cache = erroringCache{}

	got, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)
}

func TestSessionResolver_StaleResolutionDoesNotOverwriteCache(t *testing.T) {
	oldSession := liveSession("old@b.c")
	newSession := liveSession("new@b.c")

	source := newScriptedSource(func(call int) (model.Session, error) {
		if call == 1 {
			return oldSession, nil
		}
		return newSession, nil
	})
	gate := make(chan struct{})
	source.gates[1] = gate

	r := NewSessionResolver(source, logger.New(0))
	defer r.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// First resolution, held until the second one has finished.
		_, _ = r.Resolve(context.Background(), "token")
	}()

	require.Eventually(t, func() bool { return source.callCount() == 1 }, time.Second, time.Millisecond)

	got, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	require.Equal(t, newSession.UserID, got.UserID)

	close(gate)
	wg.Wait()

	// The slow first resolution must not have replaced the newer one.
	got, err = r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, newSession.UserID, got.UserID)
}

func TestSessionResolver_SignOutDropsCache(t *testing.T) {
	session := liveSession("a@b.c")
	source := newScriptedSource(func(int) (model.Session, error) {
		return session, nil
	})
	r := NewSessionResolver(source, logger.New(0))
	defer r.Close()

	_, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	require.Equal(t, 1, source.callCount())

	source.emit(model.AuthEvent{Type: model.AuthEventSignedOut, Session: model.Session{UserID: session.UserID}})

	_, err = r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, 2, source.callCount())
}

func TestSessionResolver_RelaysEvents(t *testing.T) {
	source := newScriptedSource(func(int) (model.Session, error) {
		return model.Session{}, model.ErrSessionMissing
	})
	r := NewSessionResolver(source, logger.New(0))
	defer r.Close()

	var got []model.AuthEventType
	unsubscribe := r.Subscribe(func(e model.AuthEvent) { got = append(got, e.Type) })

	source.emit(model.AuthEvent{Type: model.AuthEventSignedIn})
	unsubscribe()
	source.emit(model.AuthEvent{Type: model.AuthEventSignedOut})

	assert.Equal(t, []model.AuthEventType{model.AuthEventSignedIn}, got)
}
