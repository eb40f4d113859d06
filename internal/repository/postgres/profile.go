package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/awelch/personal-site/internal/model"
)

var _ model.ProfileStore = (*ProfileRepository)(nil)

type ProfileRepository struct {
	db *Connection
}

func NewProfileRepository(db *Connection) *ProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	var profile model.Profile
	query := `SELECT user_id, full_name, bio, username, avatar_url, website, location, theme, timezone, created_at, updated_at
			  FROM profiles WHERE user_id = $1`

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID, &profile.FullName, &profile.Bio, &profile.Username,
		&profile.AvatarURL, &profile.Website, &profile.Location, &profile.Theme,
		&profile.Timezone, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("failed to get profile by user id: %w", err)
	}

	return profile, nil
}

// Upsert inserts the profile or updates the existing row keyed by
// user_id. A username uniqueness conflict maps to ErrUsernameTaken.
func (r *ProfileRepository) Upsert(ctx context.Context, profile model.Profile) (model.Profile, error) {
	query := `INSERT INTO profiles (user_id, full_name, bio, username, avatar_url, website, location, theme, timezone)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (user_id) DO UPDATE SET
				  full_name = EXCLUDED.full_name,
				  bio = EXCLUDED.bio,
				  username = EXCLUDED.username,
				  avatar_url = EXCLUDED.avatar_url,
				  website = EXCLUDED.website,
				  location = EXCLUDED.location,
				  theme = EXCLUDED.theme,
				  timezone = EXCLUDED.timezone,
				  updated_at = now()
			  RETURNING user_id, full_name, bio, username, avatar_url, website, location, theme, timezone, created_at, updated_at`

	var saved model.Profile
	err := r.db.QueryRow(ctx, query,
		profile.UserID, profile.FullName, profile.Bio, profile.Username,
		profile.AvatarURL, profile.Website, profile.Location, profile.Theme, profile.Timezone,
	).Scan(
		&saved.UserID, &saved.FullName, &saved.Bio, &saved.Username,
		&saved.AvatarURL, &saved.Website, &saved.Location, &saved.Theme,
		&saved.Timezone, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "profiles_username_key") {
			return model.Profile{}, model.ErrUsernameTaken
		}
		return model.Profile{}, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return saved, nil
}

// UpsertAvatar persists only the avatar reference, creating the row if
// the user has never saved a profile.
func (r *ProfileRepository) UpsertAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	query := `INSERT INTO profiles (user_id, avatar_url)
			  VALUES ($1, $2)
			  ON CONFLICT (user_id) DO UPDATE SET
				  avatar_url = EXCLUDED.avatar_url,
				  updated_at = now()`

	if _, err := r.db.Exec(ctx, query, userID, avatarURL); err != nil {
		return fmt.Errorf("failed to upsert avatar: %w", err)
	}

	return nil
}
