package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/mocks"
	"github.com/awelch/personal-site/internal/model"
)

func TestTokenService_Issue_PersistsHashedRefresh(t *testing.T) {
	ctx := context.Background()
	manager := &mocks.TokenManager{}
	store := &mocks.RefreshTokenStore{}
	userID := uuid.New()

	manager.On("GenerateAccessToken", userID).Return("access", nil)
	manager.On("GenerateRefreshToken", userID).Return("refresh", "jti-1", nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(rt model.RefreshToken) bool {
		return rt.JTI == "jti-1" &&
			rt.UserID == userID &&
			string(rt.TokenHash) != "refresh" &&
			len(rt.TokenHash) == 32
	})).Return(nil)

	s := NewTokenService(manager, store, logger.New(0))

	access, refresh, err := s.Issue(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "access", access)
	assert.Equal(t, "refresh", refresh)
	store.AssertExpectations(t)
}

func TestTokenService_Refresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	manager := &mocks.TokenManager{}
	store := &mocks.RefreshTokenStore{}
	userID := uuid.New()

	manager.On("ParseRefreshToken", "old-refresh").Return(userID, "jti-old", nil)
	store.On("GetByJTI", mock.Anything, "jti-old").Return(model.RefreshToken{
		JTI:       "jti-old",
		UserID:    userID,
		TokenHash: hashRefresh("old-refresh"),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	store.On("RevokeByJTI", mock.Anything, "jti-old").Return(nil)
	manager.On("GenerateAccessToken", userID).Return("new-access", nil)
	manager.On("GenerateRefreshToken", userID).Return("new-refresh", "jti-new", nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(rt model.RefreshToken) bool {
		return rt.JTI == "jti-new" && rt.RotatedFromJTI != nil && *rt.RotatedFromJTI == "jti-old"
	})).Return(nil)

	s := NewTokenService(manager, store, logger.New(0))

	access, refresh, err := s.Refresh(ctx, "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", access)
	assert.Equal(t, "new-refresh", refresh)
	store.AssertExpectations(t)
}

func TestTokenService_Refresh_RejectsBadRecords(t *testing.T) {
	revoked := time.Now()

	tests := []struct {
		name    string
		record  model.RefreshToken
		wantErr error
	}{
		{
			name: "revoked",
			record: model.RefreshToken{
				TokenHash: hashRefresh("presented"),
				ExpiresAt: time.Now().Add(time.Hour),
				RevokedAt: &revoked,
			},
			wantErr: model.ErrTokenRevoked,
		},
		{
			name: "expired",
			record: model.RefreshToken{
				TokenHash: hashRefresh("presented"),
				ExpiresAt: time.Now().Add(-time.Minute),
			},
			wantErr: model.ErrTokenExpired,
		},
		{
			name: "hash mismatch",
			record: model.RefreshToken{
				TokenHash: hashRefresh("some-other-token"),
				ExpiresAt: time.Now().Add(time.Hour),
			},
			wantErr: model.ErrTokenMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := &mocks.TokenManager{}
			store := &mocks.RefreshTokenStore{}
			userID := uuid.New()

			manager.On("ParseRefreshToken", "presented").Return(userID, "jti", nil)
			store.On("GetByJTI", mock.Anything, "jti").Return(tt.record, nil)

			s := NewTokenService(manager, store, logger.New(0))

			_, _, err := s.Refresh(context.Background(), "presented")
			assert.ErrorIs(t, err, tt.wantErr)
			store.AssertNotCalled(t, "RevokeByJTI", mock.Anything, mock.Anything)
		})
	}
}

func TestTokenService_RevokeByToken(t *testing.T) {
	manager := &mocks.TokenManager{}
	store := &mocks.RefreshTokenStore{}

	manager.On("ParseRefreshToken", "refresh").Return(uuid.New(), "jti-1", nil)
	store.On("RevokeByJTI", mock.Anything, "jti-1").Return(nil)

	s := NewTokenService(manager, store, logger.New(0))

	require.NoError(t, s.RevokeByToken(context.Background(), "refresh"))
	store.AssertExpectations(t)
}
