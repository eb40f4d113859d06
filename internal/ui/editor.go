package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
	"github.com/awelch/personal-site/internal/service"
)

// statusClearDelay is how long a transient status stays visible before
// the editor clears it.
const statusClearDelay = 2500 * time.Millisecond

// ProfileBackend is the slice of the profile service the editor needs.
type ProfileBackend interface {
	Load(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	Save(ctx context.Context, userID uuid.UUID, input service.ProfileInput) (model.Profile, error)
	StoreAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
	SaveAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL string) error
}

// StatusKind classifies the editor's transient status line.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusInfo
	StatusSuccess
	StatusError
)

// Status is the message shown next to the save control. Field is set
// for validation errors so the message lands next to the input it
// belongs to.
type Status struct {
	Kind    StatusKind
	Field   string
	Message string
}

// ProfileForm is the editor's flat view of a profile. Stored NULLs are
// presented as empty strings and turned back into NULLs on save.
type ProfileForm struct {
	FullName  string
	Bio       string
	Username  string
	AvatarURL string
	Website   string
	Location  string
	Theme     model.Theme
	Timezone  string
}

func formFromProfile(p model.Profile) ProfileForm {
	return ProfileForm{
		FullName:  deref(p.FullName),
		Bio:       deref(p.Bio),
		Username:  deref(p.Username),
		AvatarURL: deref(p.AvatarURL),
		Website:   deref(p.Website),
		Location:  deref(p.Location),
		Theme:     p.Theme,
		Timezone:  deref(p.Timezone),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ProfileEditor tracks one user's profile edit: a working copy the
// forms mutate and an initial copy snapshotted at load or after a
// successful save. Dirty means the two differ in any tracked field.
type ProfileEditor struct {
	backend ProfileBackend
	userID  uuid.UUID
	logger  *logger.Logger

	mu          sync.Mutex
	working     ProfileForm
	initial     ProfileForm
	loaded      bool
	saving      bool
	status      Status
	statusGen   int
	statusTimer *time.Timer
	statusDelay time.Duration
	closed      bool
}

func NewProfileEditor(backend ProfileBackend, userID uuid.UUID, logger *logger.Logger) *ProfileEditor {
	return &ProfileEditor{
		backend:     backend,
		userID:      userID,
		logger:      logger,
		statusDelay: statusClearDelay,
	}
}

// Load fetches the stored profile, or empty defaults when none exists,
// and resets both copies to it.
func (e *ProfileEditor) Load(ctx context.Context) error {
	profile, err := e.backend.Load(ctx, e.userID)
	if err != nil {
		e.logger.Error("Profile editor: load failed",
			"user_id", e.userID,
			"error", err.Error())
		e.setStatus(Status{Kind: StatusError, Message: "Could not load your profile. Try again."})
		return err
	}

	form := formFromProfile(profile)

	e.mu.Lock()
	e.working = form
	e.initial = form
	e.loaded = true
	e.mu.Unlock()

	return nil
}

// Loaded reports whether the editor holds a loaded profile.
func (e *ProfileEditor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// SetField updates one working-copy field by its form name.
func (e *ProfileEditor) SetField(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch name {
	case "full_name":
		e.working.FullName = value
	case "bio":
		e.working.Bio = value
	case "username":
		e.working.Username = value
	case "website":
		e.working.Website = value
	case "location":
		e.working.Location = value
	case "timezone":
		e.working.Timezone = value
	case "theme":
		e.working.Theme = model.Theme(value)
	default:
		return fmt.Errorf("unknown profile field: %s", name)
	}
	return nil
}

// Form returns the current working copy.
func (e *ProfileEditor) Form() ProfileForm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.working
}

// IsDirty reports whether any tracked field of the working copy differs
// from the initial copy.
func (e *ProfileEditor) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.working != e.initial
}

// Saving reports whether a save is in flight. The save control stays
// disabled while it is.
func (e *ProfileEditor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Status returns the current status line.
func (e *ProfileEditor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Save persists the working copy when it is dirty. Validation failures
// and username conflicts become field-scoped statuses and nothing is
// persisted; on success the working copy becomes the new initial copy
// and a transient success status is shown.
func (e *ProfileEditor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return nil
	}
	if e.working == e.initial {
		e.mu.Unlock()
		e.setStatus(Status{Kind: StatusInfo, Message: "Nothing to save."})
		return nil
	}
	e.saving = true
	form := e.working
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
	}()

	saved, err := e.backend.Save(ctx, e.userID, service.ProfileInput{
		FullName:  form.FullName,
		Bio:       form.Bio,
		Username:  form.Username,
		AvatarURL: form.AvatarURL,
		Website:   form.Website,
		Location:  form.Location,
		Theme:     form.Theme,
		Timezone:  form.Timezone,
	})

	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		e.setStatus(Status{Kind: StatusError, Field: ve.Field, Message: ve.Message})
		return err
	case errors.Is(err, model.ErrUsernameTaken):
		e.setStatus(Status{Kind: StatusError, Field: "username", Message: "That username is already taken."})
		return err
	case err != nil:
		e.logger.Error("Profile editor: save failed",
			"user_id", e.userID,
			"error", err.Error())
		e.setStatus(Status{Kind: StatusError, Message: "Could not save profile. Try again."})
		return err
	}

	form = formFromProfile(saved)

	e.mu.Lock()
	e.working = form
	e.initial = form
	e.mu.Unlock()

	e.setStatus(Status{Kind: StatusSuccess, Message: "Profile saved."})

	return nil
}

// UploadAvatar stores the file, applies the resulting URL to the
// working copy before the profile row is written, and rolls the working
// copy back if persisting fails.
func (e *ProfileEditor) UploadAvatar(ctx context.Context, filename, contentType string, reader io.Reader, size int64) error {
	url, err := e.backend.StoreAvatar(ctx, e.userID, filename, contentType, reader, size)
	if err != nil {
		e.logger.Error("Profile editor: avatar upload failed",
			"user_id", e.userID,
			"error", err.Error())
		e.setStatus(Status{Kind: StatusError, Message: "Could not upload avatar. Try again."})
		return err
	}

	e.mu.Lock()
	prev := e.working.AvatarURL
	e.mu.Unlock()

	err = Optimistic(prev,
		func() { e.setAvatar(url) },
		func() error { return e.backend.SaveAvatarURL(ctx, e.userID, url) },
		func(prev string) { e.setAvatar(prev) },
	)
	if err != nil {
		e.logger.Error("Profile editor: avatar persist failed",
			"user_id", e.userID,
			"error", err.Error())
		e.setStatus(Status{Kind: StatusError, Message: "Could not update avatar. Try again."})
		return err
	}

	// The reference is persisted, so the snapshot moves with it.
	e.mu.Lock()
	e.initial.AvatarURL = url
	e.mu.Unlock()

	e.setStatus(Status{Kind: StatusSuccess, Message: "Avatar updated."})

	return nil
}

func (e *ProfileEditor) setAvatar(url string) {
	e.mu.Lock()
	e.working.AvatarURL = url
	e.mu.Unlock()
}

// setStatus replaces the status line and reschedules the single-shot
// clear timer. A status set after Close is dropped.
func (e *ProfileEditor) setStatus(status Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.status = status
	e.statusGen++
	gen := e.statusGen

	if e.statusTimer != nil {
		e.statusTimer.Stop()
	}
	e.statusTimer = time.AfterFunc(e.statusDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || e.statusGen != gen {
			return
		}
		e.status = Status{}
	})
}

// Close cancels the status timer. Further status updates are ignored.
func (e *ProfileEditor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.statusTimer != nil {
		e.statusTimer.Stop()
		e.statusTimer = nil
	}
}
