package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/mocks"
	"github.com/awelch/personal-site/internal/model"
)

type authFixture struct {
	userStore    *mocks.UserStore
	refreshStore *mocks.RefreshTokenStore
	manager      *mocks.TokenManager
	mailer       *mocks.Mailer
	auth         *Auth
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		userStore:    &mocks.UserStore{},
		refreshStore: &mocks.RefreshTokenStore{},
		manager:      &mocks.TokenManager{},
		mailer:       &mocks.Mailer{},
	}
	f.auth = NewAuth(f.userStore, f.refreshStore, f.manager, f.mailer, "https://example.com/", logger.New(0))
	return f
}

func hashed(t *testing.T, password string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestAuth_SignUp_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "a@b.c" && bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("secret1")) == nil
	})).Return(model.User{ID: uuid.New(), Email: "a@b.c"}, nil)

	user, err := f.auth.SignUp(ctx, "  A@B.C  ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
	f.userStore.AssertExpectations(t)
}

func TestAuth_SignUp_ShortPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	_, err := f.auth.SignUp(ctx, "a@b.c", "short")
	require.Error(t, err)

	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
	f.userStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_SignUp_InvalidEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	_, err := f.auth.SignUp(ctx, "not-an-email", "secret1")
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
}

func TestAuth_SignUp_EmailTaken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrEmailTaken)

	_, err := f.auth.SignUp(ctx, "a@b.c", "secret1")
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestAuth_SignInWithPassword_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.userStore.On("GetByEmail", mock.Anything, "a@b.c").
		Return(model.User{ID: userID, Email: "a@b.c", PasswordHash: hashed(t, "secret1")}, nil)
	f.manager.On("GenerateAccessToken", userID).Return("access", nil)
	f.manager.On("GenerateRefreshToken", userID).Return("refresh", "jti-1", nil)
	f.refreshStore.On("Create", mock.Anything, mock.MatchedBy(func(rt model.RefreshToken) bool {
		return rt.UserID == userID && rt.JTI == "jti-1" && len(rt.TokenHash) > 0
	})).Return(nil)

	var got model.AuthEvent
	f.auth.Subscribe(func(e model.AuthEvent) { got = e })

	session, access, refresh, err := f.auth.SignInWithPassword(ctx, "A@b.c", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "access", access)
	assert.Equal(t, "refresh", refresh)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, model.AuthEventSignedIn, got.Type)
	assert.Equal(t, userID, got.Session.UserID)
}

func TestAuth_SignInWithPassword_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("GetByEmail", mock.Anything, "nobody@b.c").Return(model.User{}, model.ErrNotFound)

	_, _, _, err := f.auth.SignInWithPassword(ctx, "nobody@b.c", "secret1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAuth_SignInWithPassword_WrongPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("GetByEmail", mock.Anything, "a@b.c").
		Return(model.User{ID: uuid.New(), Email: "a@b.c", PasswordHash: hashed(t, "secret1")}, nil)

	_, _, _, err := f.auth.SignInWithPassword(ctx, "a@b.c", "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	f.manager.AssertNotCalled(t, "GenerateAccessToken", mock.Anything)
}

func TestAuth_SignOut_RevokesAndEmits(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.refreshStore.On("RevokeAllByUser", mock.Anything, userID).Return(nil)

	var got model.AuthEvent
	f.auth.Subscribe(func(e model.AuthEvent) { got = e })

	require.NoError(t, f.auth.SignOut(ctx, userID))
	assert.Equal(t, model.AuthEventSignedOut, got.Type)
	assert.Equal(t, userID, got.Session.UserID)
	f.refreshStore.AssertExpectations(t)
}

func TestAuth_GetUser_EmptyToken(t *testing.T) {
	f := newAuthFixture()

	_, err := f.auth.GetUser(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrSessionMissing)
}

func TestAuth_GetUser_InvalidToken(t *testing.T) {
	f := newAuthFixture()

	f.manager.On("ParseAccessToken", "garbage").Return(uuid.Nil, errors.New("bad signature"))

	_, err := f.auth.GetUser(context.Background(), "garbage")
	assert.ErrorIs(t, err, model.ErrSessionMissing)
}

func TestAuth_GetUser_DeletedUser(t *testing.T) {
	f := newAuthFixture()
	userID := uuid.New()

	f.manager.On("ParseAccessToken", "access").Return(userID, nil)
	f.userStore.On("GetByID", mock.Anything, userID).Return(model.User{}, model.ErrNotFound)

	_, err := f.auth.GetUser(context.Background(), "access")
	assert.ErrorIs(t, err, model.ErrSessionMissing)
}

func TestAuth_GetUser_Success(t *testing.T) {
	f := newAuthFixture()
	userID := uuid.New()

	f.manager.On("ParseAccessToken", "access").Return(userID, nil)
	f.userStore.On("GetByID", mock.Anything, userID).Return(model.User{ID: userID, Email: "a@b.c"}, nil)

	session, err := f.auth.GetUser(context.Background(), "access")
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, "a@b.c", session.Email)
	assert.False(t, session.ExpiresAt.IsZero())
}

func TestAuth_ResetPasswordForEmail_UnknownAddress(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("GetByEmail", mock.Anything, "nobody@b.c").Return(model.User{}, model.ErrNotFound)

	// Unknown addresses report success so accounts cannot be enumerated.
	require.NoError(t, f.auth.ResetPasswordForEmail(ctx, "nobody@b.c"))
	f.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_ResetPasswordForEmail_SendsLink(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.userStore.On("GetByEmail", mock.Anything, "a@b.c").Return(model.User{ID: userID, Email: "a@b.c"}, nil)
	f.manager.On("GenerateResetToken", userID).Return("reset-token", nil)
	f.mailer.On("SendPasswordReset", mock.Anything, "a@b.c", "https://example.com/reset-password?token=reset-token").Return(nil)

	require.NoError(t, f.auth.ResetPasswordForEmail(ctx, "a@b.c"))
	f.mailer.AssertExpectations(t)
}

func TestAuth_ResetPasswordForEmail_EmptyAddress(t *testing.T) {
	f := newAuthFixture()

	err := f.auth.ResetPasswordForEmail(context.Background(), "   ")
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
}

func TestAuth_VerifyResetToken_EmitsRecovery(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.manager.On("ParseResetToken", "reset-token").Return(userID, nil)
	f.userStore.On("GetByID", mock.Anything, userID).Return(model.User{ID: userID, Email: "a@b.c"}, nil)

	var got model.AuthEvent
	f.auth.Subscribe(func(e model.AuthEvent) { got = e })

	session, err := f.auth.VerifyResetToken(ctx, "reset-token")
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, model.AuthEventPasswordRecovery, got.Type)
}

func TestAuth_VerifyResetToken_Invalid(t *testing.T) {
	f := newAuthFixture()

	f.manager.On("ParseResetToken", "bad").Return(uuid.Nil, errors.New("expired"))

	_, err := f.auth.VerifyResetToken(context.Background(), "bad")
	assert.ErrorIs(t, err, model.ErrSessionMissing)
}

func TestAuth_UpdatePassword_RevokesSessions(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.userStore.On("UpdatePassword", mock.Anything, userID, mock.Anything).Return(nil)
	f.refreshStore.On("RevokeAllByUser", mock.Anything, userID).Return(nil)

	var got model.AuthEvent
	f.auth.Subscribe(func(e model.AuthEvent) { got = e })

	require.NoError(t, f.auth.UpdatePassword(ctx, userID, "newsecret"))
	assert.Equal(t, model.AuthEventUserUpdated, got.Type)
	f.refreshStore.AssertExpectations(t)
}

func TestAuth_UpdatePassword_TooShort(t *testing.T) {
	f := newAuthFixture()

	err := f.auth.UpdatePassword(context.Background(), uuid.New(), "abc")
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
	f.userStore.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_UpdateEmail_SendsConfirmationOnly(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.manager.On("GenerateEmailChangeToken", userID, "new@b.c").Return("change-token", nil)
	f.mailer.On("SendEmailChange", mock.Anything, "new@b.c", "https://example.com/confirm-email?token=change-token").Return(nil)

	require.NoError(t, f.auth.UpdateEmail(ctx, userID, " New@B.C "))

	// The stored address must not change until the link is confirmed.
	f.userStore.AssertNotCalled(t, "UpdateEmail", mock.Anything, mock.Anything, mock.Anything)
	f.mailer.AssertExpectations(t)
}

func TestAuth_ConfirmEmailChange_AppliesChange(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.manager.On("ParseEmailChangeToken", "change-token").Return(userID, "new@b.c", nil)
	f.userStore.On("UpdateEmail", mock.Anything, userID, "new@b.c").Return(nil)

	var got model.AuthEvent
	f.auth.Subscribe(func(e model.AuthEvent) { got = e })

	require.NoError(t, f.auth.ConfirmEmailChange(ctx, "change-token"))
	assert.Equal(t, model.AuthEventUserUpdated, got.Type)
	assert.Equal(t, "new@b.c", got.Session.Email)
}

func TestAuth_Subscribe_UnsubscribeStopsDelivery(t *testing.T) {
	f := newAuthFixture()

	count := 0
	unsubscribe := f.auth.Subscribe(func(model.AuthEvent) { count++ })

	f.auth.emit(model.AuthEvent{Type: model.AuthEventSignedIn})
	unsubscribe()
	unsubscribe() // safe to call twice
	f.auth.emit(model.AuthEvent{Type: model.AuthEventSignedOut})

	assert.Equal(t, 1, count)
}
