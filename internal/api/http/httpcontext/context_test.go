package httpcontext

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/awelch/personal-site/internal/model"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager()
	session := model.Session{UserID: uuid.New(), Email: "a@b.c"}

	ctx := m.SetSessionToContext(context.Background(), session)

	got, ok := m.GetSessionFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, session, got)
}

func TestManager_MissingSession(t *testing.T) {
	m := NewManager()

	_, ok := m.GetSessionFromContext(context.Background())
	assert.False(t, ok)
}
