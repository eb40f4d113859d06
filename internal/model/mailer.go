package model

import "context"

// Mailer delivers account emails. Delivery itself is a hosted concern;
// this is the seam a real provider plugs into.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
	SendEmailChange(ctx context.Context, email, link string) error
}
