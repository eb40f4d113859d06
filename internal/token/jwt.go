package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/awelch/personal-site/internal/model"
)

// Claims represents JWT claims with token type and user ID. NewEmail is
// set only on email-change tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"typ"`
	NewEmail  string    `json:"new_email,omitempty"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) model.TokenManager {
	return &JWT{secretKey: secretKey}
}

const (
	accessTTL      = 15 * time.Minute
	refreshTTL     = 30 * 24 * time.Hour
	resetTTL       = time.Hour
	emailChangeTTL = 24 * time.Hour

	typeAccess      = "access"
	typeRefresh     = "refresh"
	typeReset       = "reset"
	typeEmailChange = "email_change"
)

// AccessTTL is the validity window of access tokens, exported for
// session cookie expiry.
const AccessTTL = accessTTL

// GenerateAccessToken creates a short-lived access token.
func (j *JWT) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return j.sign(Claims{
		RegisteredClaims: registered("", accessTTL),
		UserID:           userID,
		TokenType:        typeAccess,
	}, "access")
}

// GenerateRefreshToken creates a long-lived refresh token and returns its JTI.
func (j *JWT) GenerateRefreshToken(userID uuid.UUID) (string, string, error) {
	jti := uuid.NewString()
	tokenString, err := j.sign(Claims{
		RegisteredClaims: registered(jti, refreshTTL),
		UserID:           userID,
		TokenType:        typeRefresh,
	}, "refresh")
	if err != nil {
		return "", "", err
	}
	return tokenString, jti, nil
}

// GenerateResetToken creates a short-lived password reset token.
func (j *JWT) GenerateResetToken(userID uuid.UUID) (string, error) {
	return j.sign(Claims{
		RegisteredClaims: registered(uuid.NewString(), resetTTL),
		UserID:           userID,
		TokenType:        typeReset,
	}, "reset")
}

// GenerateEmailChangeToken creates a token carrying the address the user
// wants to switch to. The change applies only when the token is parsed
// back from the confirmation link.
func (j *JWT) GenerateEmailChangeToken(userID uuid.UUID, newEmail string) (string, error) {
	return j.sign(Claims{
		RegisteredClaims: registered(uuid.NewString(), emailChangeTTL),
		UserID:           userID,
		TokenType:        typeEmailChange,
		NewEmail:         newEmail,
	}, "email change")
}

// ParseAccessToken validates and extracts the user ID from an access token.
func (j *JWT) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims, err := j.parse(tokenString, typeAccess, "access")
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// ParseRefreshToken validates and extracts the user ID and JTI from a refresh token.
func (j *JWT) ParseRefreshToken(tokenString string) (uuid.UUID, string, error) {
	claims, err := j.parse(tokenString, typeRefresh, "refresh")
	if err != nil {
		return uuid.Nil, "", err
	}
	return claims.UserID, claims.ID, nil
}

// ParseResetToken validates and extracts the user ID from a reset token.
func (j *JWT) ParseResetToken(tokenString string) (uuid.UUID, error) {
	claims, err := j.parse(tokenString, typeReset, "reset")
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// ParseEmailChangeToken validates and extracts the user ID and pending
// address from an email-change token.
func (j *JWT) ParseEmailChangeToken(tokenString string) (uuid.UUID, string, error) {
	claims, err := j.parse(tokenString, typeEmailChange, "email change")
	if err != nil {
		return uuid.Nil, "", err
	}
	return claims.UserID, claims.NewEmail, nil
}

func registered(jti string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (j *JWT) sign(claims Claims, kind string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return tokenString, nil
}

func (j *JWT) parse(tokenString, wantType, kind string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s token: %w", kind, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%s token is invalid", kind)
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims, nil
}
