package handler

import (
	"errors"

	"github.com/awelch/personal-site/internal/model"
)

// messageFor maps service errors to the text shown inline on a form.
// Authentication and validation errors keep their specific wording;
// anything else becomes a generic retryable status.
func messageFor(err error) string {
	var ve *model.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, model.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, model.ErrEmailTaken):
		return "That email is already registered."
	case errors.Is(err, model.ErrUsernameTaken):
		return "That username is already taken."
	case errors.Is(err, model.ErrSessionMissing):
		return "Your session has expired. Sign in again."
	default:
		return "Something went wrong. Try again."
	}
}
