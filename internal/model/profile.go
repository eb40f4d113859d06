package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Theme is a stored display preference.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// ValidTheme reports whether t is one of the known preferences.
func ValidTheme(t Theme) bool {
	return t == ThemeSystem || t == ThemeLight || t == ThemeDark
}

// ProfileStore defines persistence operations for profiles. There is at
// most one row per user; writes use insert-or-update keyed by user id.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (Profile, error)
	Upsert(ctx context.Context, profile Profile) (Profile, error)
	UpsertAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error
}

// Profile holds the editable public details of a user. Optional fields
// are pointers: absent means NULL in storage, never the empty string.
type Profile struct {
	UserID    uuid.UUID
	FullName  *string
	Bio       *string
	Username  *string
	AvatarURL *string
	Website   *string
	Location  *string
	Theme     Theme
	Timezone  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmptyProfile returns the defaults used when no row exists yet.
func EmptyProfile(userID uuid.UUID) Profile {
	return Profile{
		UserID: userID,
		Theme:  ThemeSystem,
	}
}
