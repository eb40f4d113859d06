package model

import "github.com/google/uuid"

// TokenManager generates and validates the tokens the site issues:
// access/refresh session pairs, single-use password reset tokens, and
// email-change confirmation tokens.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (token string, jti string, err error)
	ParseAccessToken(token string) (uuid.UUID, error)
	ParseRefreshToken(token string) (userID uuid.UUID, jti string, err error)
	GenerateResetToken(userID uuid.UUID) (string, error)
	ParseResetToken(token string) (uuid.UUID, error)
	GenerateEmailChangeToken(userID uuid.UUID, newEmail string) (string, error)
	ParseEmailChangeToken(token string) (userID uuid.UUID, newEmail string, err error)
}
