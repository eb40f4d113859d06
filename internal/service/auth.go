package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
	"github.com/awelch/personal-site/internal/token"
)

const minPasswordLength = 6

// Auth implements account operations: sign-up, sign-in, sign-out,
// password reset and email change. It also broadcasts auth-state change
// events to subscribers (sign-in, sign-out, refresh, user updates).
type Auth struct {
	userStore    model.UserStore
	tokenService *TokenService
	manager      model.TokenManager
	mailer       model.Mailer
	baseURL      string
	logger       *logger.Logger

	mu          sync.Mutex
	nextSubID   int
	subscribers map[int]func(model.AuthEvent)
}

func NewAuth(
	userStore model.UserStore,
	refreshTokenStore model.RefreshTokenStore,
	manager model.TokenManager,
	mailer model.Mailer,
	baseURL string,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenService: NewTokenService(manager, refreshTokenStore, logger),
		manager:      manager,
		mailer:       mailer,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logger,
		subscribers:  map[int]func(model.AuthEvent){},
	}
}

// Tokens returns the token service sharing this service's stores.
func (a *Auth) Tokens() *TokenService {
	return a.tokenService
}

// Subscribe registers fn for auth-state change notifications. Events are
// delivered in order per subscriber. The returned function removes the
// subscription; calling it more than once is harmless.
func (a *Auth) Subscribe(fn func(model.AuthEvent)) func() {
	a.mu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

func (a *Auth) emit(event model.AuthEvent) {
	a.mu.Lock()
	fns := make([]func(model.AuthEvent), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// SignUp creates a new account. The address is normalized to lower case.
func (a *Auth) SignUp(ctx context.Context, email, password string) (model.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, model.NewValidationError("email", "enter a valid email address")
	}
	if len(password) < minPasswordLength {
		return model.User{}, model.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.User{}, model.ErrEmailTaken
		}
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user signed up",
		"user_id", user.ID,
		"email", email)

	return user, nil
}

// SignInWithPassword verifies credentials and issues a session. Unknown
// email and wrong password both map to ErrInvalidCredentials.
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (model.Session, string, string, error) {
	email = normalizeEmail(email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, "", "", model.ErrInvalidCredentials
	}
	if err != nil {
		return model.Session{}, "", "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return model.Session{}, "", "", model.ErrInvalidCredentials
	}

	access, refresh, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return model.Session{}, "", "", fmt.Errorf("failed to issue tokens: %w", err)
	}

	session := model.Session{
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(token.AccessTTL),
	}

	a.logger.Info("Auth service: user signed in",
		"user_id", user.ID)
	a.emit(model.AuthEvent{Type: model.AuthEventSignedIn, Session: session})

	return session, access, refresh, nil
}

// SignOut revokes all outstanding refresh tokens for the user.
func (a *Auth) SignOut(ctx context.Context, userID uuid.UUID) error {
	if err := a.tokenService.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	a.logger.Info("Auth service: user signed out",
		"user_id", userID)
	a.emit(model.AuthEvent{Type: model.AuthEventSignedOut, Session: model.Session{UserID: userID}})

	return nil
}

// GetUser revalidates an access token against the user store and returns
// the current identity. No resolvable user maps to ErrSessionMissing.
func (a *Auth) GetUser(ctx context.Context, accessToken string) (model.Session, error) {
	if accessToken == "" {
		return model.Session{}, model.ErrSessionMissing
	}

	userID, err := a.tokenService.GetUserID(ctx, accessToken)
	if err != nil {
		return model.Session{}, model.ErrSessionMissing
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, model.ErrSessionMissing
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return model.Session{
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(token.AccessTTL),
	}, nil
}

// Refresh rotates a refresh token into a new access/refresh pair.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	access, refresh, err := a.tokenService.Refresh(ctx, refreshToken)
	if err != nil {
		return "", "", err
	}

	session, err := a.GetUser(ctx, access)
	if err == nil {
		a.emit(model.AuthEvent{Type: model.AuthEventTokenRefreshed, Session: session})
	}

	return access, refresh, nil
}

// ResetPasswordForEmail mails a reset link. An unknown address is logged
// and reported as success so callers cannot enumerate accounts.
func (a *Auth) ResetPasswordForEmail(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return model.NewValidationError("email", "enter your email first")
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: reset requested for unknown email",
			"email", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	resetToken, err := a.manager.GenerateResetToken(user.ID)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", a.baseURL, resetToken)
	if err := a.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	a.logger.Info("Auth service: password reset email sent",
		"user_id", user.ID)

	return nil
}

// VerifyResetToken validates a reset link token and returns the identity
// it belongs to, announcing the recovery flow to subscribers.
func (a *Auth) VerifyResetToken(ctx context.Context, resetToken string) (model.Session, error) {
	userID, err := a.manager.ParseResetToken(resetToken)
	if err != nil {
		return model.Session{}, model.ErrSessionMissing
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.Session{}, model.ErrSessionMissing
	}

	session := model.Session{UserID: user.ID, Email: user.Email}
	a.emit(model.AuthEvent{Type: model.AuthEventPasswordRecovery, Session: session})

	return session, nil
}

// UpdatePassword sets a new password and revokes outstanding refresh
// tokens so other sessions must sign in again.
func (a *Auth) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return model.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.userStore.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := a.tokenService.RevokeAllForUser(ctx, userID); err != nil {
		a.logger.Error("Auth service: failed to revoke tokens after password change",
			"user_id", userID,
			"error", err.Error())
	}

	a.logger.Info("Auth service: password updated",
		"user_id", userID)
	a.emit(model.AuthEvent{Type: model.AuthEventUserUpdated, Session: model.Session{UserID: userID}})

	return nil
}

// UpdateEmail mails a confirmation link to the new address. The stored
// address does not change until the link is confirmed.
func (a *Auth) UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) error {
	newEmail = normalizeEmail(newEmail)
	if newEmail == "" || !strings.Contains(newEmail, "@") {
		return model.NewValidationError("email", "enter a new email address")
	}

	changeToken, err := a.manager.GenerateEmailChangeToken(userID, newEmail)
	if err != nil {
		return fmt.Errorf("failed to generate email change token: %w", err)
	}

	link := fmt.Sprintf("%s/confirm-email?token=%s", a.baseURL, changeToken)
	if err := a.mailer.SendEmailChange(ctx, newEmail, link); err != nil {
		return fmt.Errorf("failed to send email change confirmation: %w", err)
	}

	a.logger.Info("Auth service: email change confirmation sent",
		"user_id", userID)

	return nil
}

// ConfirmEmailChange applies a pending email change from its token.
func (a *Auth) ConfirmEmailChange(ctx context.Context, changeToken string) error {
	userID, newEmail, err := a.manager.ParseEmailChangeToken(changeToken)
	if err != nil {
		return model.ErrSessionMissing
	}

	if err := a.userStore.UpdateEmail(ctx, userID, newEmail); err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}

	a.logger.Info("Auth service: email updated",
		"user_id", userID)
	a.emit(model.AuthEvent{Type: model.AuthEventUserUpdated, Session: model.Session{UserID: userID, Email: newEmail}})

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
