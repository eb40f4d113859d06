package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
	"github.com/awelch/personal-site/internal/ui"
)

// Dashboard serves the signed-in landing page: the account card, a
// profile summary with a completion figure, and the notes widget.
type Dashboard struct {
	registry       *ui.Registry
	contextManager model.ContextManager
	renderer       *Renderer
	logger         *logger.Logger
}

func NewDashboard(registry *ui.Registry, contextManager model.ContextManager, renderer *Renderer, logger *logger.Logger) *Dashboard {
	return &Dashboard{
		registry:       registry,
		contextManager: contextManager,
		renderer:       renderer,
		logger:         logger,
	}
}

type dashboardPage struct {
	Identity    ui.Identity
	Form        ui.ProfileForm
	Completion  int
	Notes       []noteRow
	NotesState  ui.NotesState
	NotesEmpty  bool
	InputStatus string
	Input       string
}

type noteRow struct {
	ID        uuid.UUID
	Content   string
	CreatedAt string
	Status    string
}

// Page renders the dashboard.
func (h *Dashboard) Page(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	state := h.registry.For(sess)
	state.Navbar.Refresh(r.Context(), sess)

	if !state.Editor.Loaded() {
		// Load failures still render the page; the editor keeps its own
		// error status.
		_ = state.Editor.Load(r.Context())
	}
	state.Notes.Load(r.Context())

	form := state.Editor.Form()
	notes := state.Notes.Notes()

	rows := make([]noteRow, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, noteRow{
			ID:        n.ID,
			Content:   n.Content,
			CreatedAt: n.CreatedAt.Format("Jan 2, 2006 15:04"),
			Status:    state.Notes.RowStatus(n.ID),
		})
	}

	h.renderer.Render(w, "dashboard.html", dashboardPage{
		Identity:    state.Navbar.Identity(),
		Form:        form,
		Completion:  completion(form),
		Notes:       rows,
		NotesState:  state.Notes.State(),
		NotesEmpty:  state.Notes.State() == ui.NotesLoadedEmpty,
		InputStatus: state.Notes.InputStatus(),
		Input:       state.Notes.Input(),
	})
}

// AddNote handles the note form post and sends the viewer back to the
// dashboard; statuses live in the widget state.
func (h *Dashboard) AddNote(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	state := h.registry.For(sess)
	state.Notes.SetInput(r.FormValue("content"))
	_ = state.Notes.Add(r.Context())

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// DeleteNote handles a row's delete post.
func (h *Dashboard) DeleteNote(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	state := h.registry.For(sess)
	_ = state.Notes.Delete(r.Context(), id)

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// completion is the share of optional profile fields that are filled.
func completion(form ui.ProfileForm) int {
	fields := []string{
		form.FullName,
		form.Bio,
		form.Username,
		form.AvatarURL,
		form.Website,
		form.Location,
		form.Timezone,
	}

	filled := 0
	for _, f := range fields {
		if f != "" {
			filled++
		}
	}
	return filled * 100 / len(fields)
}
