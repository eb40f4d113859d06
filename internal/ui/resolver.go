package ui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
)

// SessionSource resolves an access token to an identity and notifies
// subscribers of auth-state changes. The auth service implements it.
type SessionSource interface {
	GetUser(ctx context.Context, accessToken string) (model.Session, error)
	Subscribe(fn func(model.AuthEvent)) func()
}

// SessionCache is the local session lookup consulted before the source
// is asked. Read failures are tolerated; resolution falls back to the
// source.
type SessionCache interface {
	Get(token string) (model.Session, bool, error)
	Set(token string, session model.Session)
	Delete(token string)
	Clear()
}

// memoryCache is the default in-process SessionCache.
type memoryCache struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func newMemoryCache() *memoryCache {
	return &memoryCache{sessions: map[string]model.Session{}}
}

func (c *memoryCache) Get(token string) (model.Session, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session, ok := c.sessions[token]
	return session, ok, nil
}

func (c *memoryCache) Set(token string, session model.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[token] = session
}

func (c *memoryCache) Delete(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = map[string]model.Session{}
}

// SessionResolver determines the current identity for a presented
// access token: cached session first, source revalidation on a miss.
// A per-token epoch counter guards against out-of-order completions: a
// resolution that started before a newer one may not write the cache.
// The resolver subscribes to auth events for its lifetime and drops
// cached state on sign-out and user updates.
type SessionResolver struct {
	source SessionSource
	cache  SessionCache
	logger *logger.Logger

	mu          sync.Mutex
	epochs      map[string]uint64
	subscribers map[int]func(model.AuthEvent)
	nextSubID   int

	unsubscribe func()
}

func NewSessionResolver(source SessionSource, logger *logger.Logger) *SessionResolver {
	r := &SessionResolver{
		source:      source,
		cache:       newMemoryCache(),
		logger:      logger,
		epochs:      map[string]uint64{},
		subscribers: map[int]func(model.AuthEvent){},
	}
	r.unsubscribe = source.Subscribe(r.onAuthEvent)
	return r
}

// Resolve returns the identity behind the token. A token that resolves
// to no user yields model.ErrSessionMissing; callers branch to the
// unauthenticated path. ErrSessionMissing is an expected state and is
// only logged at debug level.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, model.ErrSessionMissing
	}

	epoch := r.bumpEpoch(token)

	session, ok, err := r.cache.Get(token)
	if err != nil {
		r.logger.Debug("Session resolver: cache read failed",
			"error", err.Error())
	}
	if err == nil && ok && time.Now().Before(session.ExpiresAt) {
		return session, nil
	}

	session, err = r.source.GetUser(ctx, token)
	if errors.Is(err, model.ErrSessionMissing) {
		r.cache.Delete(token)
		r.logger.Debug("Session resolver: no session for token")
		return model.Session{}, model.ErrSessionMissing
	}
	if err != nil {
		return model.Session{}, err
	}

	// A newer resolution for this token has started in the meantime;
	// return the result but leave the cache to the newer one.
	if r.currentEpoch(token) == epoch {
		r.cache.Set(token, session)
	}

	return session, nil
}

// Subscribe relays auth events through the resolver's own subscription.
// The returned function removes the registration.
func (r *SessionResolver) Subscribe(fn func(model.AuthEvent)) func() {
	r.mu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	}
}

// Close unsubscribes from the source. The resolver must not be used
// afterwards.
func (r *SessionResolver) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

func (r *SessionResolver) onAuthEvent(event model.AuthEvent) {
	switch event.Type {
	case model.AuthEventSignedOut, model.AuthEventUserUpdated:
		r.cache.Clear()
	}

	r.mu.Lock()
	fns := make([]func(model.AuthEvent), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

func (r *SessionResolver) bumpEpoch(token string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epochs[token]++
	return r.epochs[token]
}

func (r *SessionResolver) currentEpoch(token string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epochs[token]
}
