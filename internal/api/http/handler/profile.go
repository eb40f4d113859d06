package handler

import (
	"errors"
	"net/http"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
	"github.com/awelch/personal-site/internal/service"
	"github.com/awelch/personal-site/internal/ui"
)

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

// profileFields are the form inputs the editor tracks, in render order.
var profileFields = []string{"full_name", "bio", "username", "website", "location", "timezone", "theme"}

// Profile serves the profile editor page and its form posts.
type Profile struct {
	registry       *ui.Registry
	auth           *service.Auth
	contextManager model.ContextManager
	renderer       *Renderer
	logger         *logger.Logger
}

func NewProfile(registry *ui.Registry, auth *service.Auth, contextManager model.ContextManager, renderer *Renderer, logger *logger.Logger) *Profile {
	return &Profile{
		registry:       registry,
		auth:           auth,
		contextManager: contextManager,
		renderer:       renderer,
		logger:         logger,
	}
}

type profilePage struct {
	Email  string
	Form   ui.ProfileForm
	Dirty  bool
	Saving bool
	Status ui.Status
	Notice string
	Theme  model.Theme
}

// Page renders the profile editor.
func (h *Profile) Page(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	state := h.registry.For(sess)
	if !state.Editor.Loaded() {
		_ = state.Editor.Load(r.Context())
	}

	h.renderer.Render(w, "profile.html", profilePage{
		Email:  sess.Email,
		Form:   state.Editor.Form(),
		Dirty:  state.Editor.IsDirty(),
		Saving: state.Editor.Saving(),
		Status: state.Editor.Status(),
		Notice: r.URL.Query().Get("notice"),
		Theme:  state.Theme.Effective(),
	})
}

// Save applies the posted fields to the working copy and saves.
// Validation and conflict errors end up as field-scoped statuses on the
// editor; the page re-renders them after the redirect.
func (h *Profile) Save(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	state := h.registry.For(sess)
	if !state.Editor.Loaded() {
		if err := state.Editor.Load(r.Context()); err != nil {
			http.Redirect(w, r, "/profile", http.StatusFound)
			return
		}
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}

	for _, field := range profileFields {
		if !r.PostForm.Has(field) {
			continue
		}
		if err := state.Editor.SetField(field, r.PostFormValue(field)); err != nil {
			h.logger.Error("Profile handler: bad field",
				"field", field,
				"error", err.Error())
		}
	}
	if r.PostForm.Has("theme") {
		state.Theme.SetPreference(model.Theme(r.PostFormValue("theme")))
	}

	_ = state.Editor.Save(r.Context())

	http.Redirect(w, r, "/profile", http.StatusFound)
}

// UploadAvatar accepts the avatar file post, capped at 5 MiB.
func (h *Profile) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.renderer.Render(w, "message.html", struct{ Message string }{
				"That file is too large. Avatars are limited to 5 MiB.",
			})
			return
		}
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}
	defer file.Close()

	state := h.registry.For(sess)
	if !state.Editor.Loaded() {
		_ = state.Editor.Load(r.Context())
	}

	_ = state.Editor.UploadAvatar(r.Context(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)

	http.Redirect(w, r, "/profile", http.StatusFound)
}

// ChangeEmail mails a confirmation link to the new address.
func (h *Profile) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := h.auth.UpdateEmail(r.Context(), sess.UserID, r.FormValue("email")); err != nil {
		http.Redirect(w, r, "/profile?notice="+notice(messageFor(err)), http.StatusFound)
		return
	}

	http.Redirect(w, r, "/profile?notice="+notice("Check the new address for a confirmation link."), http.StatusFound)
}

// ChangePassword sets a new password for the signed-in user.
func (h *Profile) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := h.auth.UpdatePassword(r.Context(), sess.UserID, r.FormValue("password")); err != nil {
		http.Redirect(w, r, "/profile?notice="+notice(messageFor(err)), http.StatusFound)
		return
	}

	http.Redirect(w, r, "/login?notice="+notice("Password updated. Sign in again."), http.StatusFound)
}
