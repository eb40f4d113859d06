package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
)

const (
	MaxFullNameLength = 80
	MaxBioLength      = 500
	MaxUsernameLength = 20
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// NormalizeUsername trims and lowercases a raw username. It is
// idempotent: normalizing an already-normalized value changes nothing.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidUsername reports whether s matches the allowed username shape:
// 3-20 characters from a-z, 0-9 and underscore.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// ProfileInput is the working copy of a profile edit. All fields are
// plain strings; normalization decides what becomes NULL.
type ProfileInput struct {
	FullName  string
	Bio       string
	Username  string
	AvatarURL string
	Website   string
	Location  string
	Theme     model.Theme
	Timezone  string
}

// Profile implements profile reads, validated saves and the avatar
// upload flow.
type Profile struct {
	profileStore model.ProfileStore
	storage      model.Storage
	logger       *logger.Logger
}

func NewProfile(profileStore model.ProfileStore, storage model.Storage, logger *logger.Logger) *Profile {
	return &Profile{
		profileStore: profileStore,
		storage:      storage,
		logger:       logger,
	}
}

// Load fetches the stored profile, or empty defaults if the user has
// never saved one. Absence is not an error to callers.
func (s *Profile) Load(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	profile, err := s.profileStore.GetByUserID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.EmptyProfile(userID), nil
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	if !model.ValidTheme(profile.Theme) {
		profile.Theme = model.ThemeSystem
	}

	return profile, nil
}

// Save normalizes and validates the input, then upserts the row keyed by
// user id. Validation failures return a ValidationError and never reach
// the store. A duplicate username surfaces as ErrUsernameTaken.
func (s *Profile) Save(ctx context.Context, userID uuid.UUID, input ProfileInput) (model.Profile, error) {
	normalized, err := normalizeProfile(userID, input)
	if err != nil {
		return model.Profile{}, err
	}

	saved, err := s.profileStore.Upsert(ctx, normalized)
	if err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			return model.Profile{}, model.ErrUsernameTaken
		}
		s.logger.Error("Profile service: failed to upsert profile",
			"user_id", userID,
			"error", err.Error())
		return model.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("Profile service: profile saved",
		"user_id", userID)

	return saved, nil
}

// StoreAvatar uploads the file under a user-scoped key and returns its
// public URL. Nothing is written to the profile row; callers follow up
// with SaveAvatarURL once they have applied the URL locally.
func (s *Profile) StoreAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if userID == uuid.Nil {
		return "", model.ErrSessionMissing
	}

	key := avatarKey(userID, filename)

	if err := s.storage.Upload(ctx, key, reader, size, contentType); err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	s.logger.Info("Profile service: avatar uploaded",
		"user_id", userID,
		"key", key)

	return s.storage.PublicURL(key), nil
}

// SaveAvatarURL persists the avatar reference as a partial upsert.
func (s *Profile) SaveAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	if err := s.profileStore.UpsertAvatar(ctx, userID, avatarURL); err != nil {
		return fmt.Errorf("failed to persist avatar reference: %w", err)
	}
	return nil
}

// UploadAvatar composes StoreAvatar and SaveAvatarURL in one call. The
// key embeds a timestamp; the upload itself allows overwrite.
func (s *Profile) UploadAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	publicURL, err := s.StoreAvatar(ctx, userID, filename, contentType, reader, size)
	if err != nil {
		return "", err
	}

	if err := s.SaveAvatarURL(ctx, userID, publicURL); err != nil {
		return "", err
	}

	return publicURL, nil
}

// avatarKey derives the storage path: user id, timestamped name, and the
// uploaded file's extension, defaulting to png.
func avatarKey(userID uuid.UUID, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("%s/avatar-%d.%s", userID, time.Now().Unix(), ext)
}

func normalizeProfile(userID uuid.UUID, input ProfileInput) (model.Profile, error) {
	fullName := strings.TrimSpace(input.FullName)
	bio := strings.TrimSpace(input.Bio)
	username := NormalizeUsername(input.Username)

	if utf8.RuneCountInString(fullName) > MaxFullNameLength {
		return model.Profile{}, model.NewValidationError("full_name",
			fmt.Sprintf("full name must be %d characters or fewer", MaxFullNameLength))
	}
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return model.Profile{}, model.NewValidationError("bio",
			fmt.Sprintf("bio must be %d characters or fewer", MaxBioLength))
	}
	if username != "" && !ValidUsername(username) {
		return model.Profile{}, model.NewValidationError("username",
			fmt.Sprintf("username must be 3-%d chars and only a-z, 0-9, underscore", MaxUsernameLength))
	}

	theme := input.Theme
	if !model.ValidTheme(theme) {
		theme = model.ThemeSystem
	}

	return model.Profile{
		UserID:    userID,
		FullName:  optional(fullName),
		Bio:       optional(bio),
		Username:  optional(username),
		AvatarURL: optional(strings.TrimSpace(input.AvatarURL)),
		Website:   optional(strings.TrimSpace(input.Website)),
		Location:  optional(strings.TrimSpace(input.Location)),
		Theme:     theme,
		Timezone:  optional(strings.TrimSpace(input.Timezone)),
	}, nil
}

// optional maps the empty string to NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
