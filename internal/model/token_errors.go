package model

import "errors"

var (
	ErrTokenRevoked  = errors.New("token revoked")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenMismatch = errors.New("token mismatch")
)
