package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
)

// NoteBackend is the slice of the note service the widget needs.
type NoteBackend interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Note, error)
	Add(ctx context.Context, userID uuid.UUID, content string) (model.Note, error)
	Delete(ctx context.Context, userID uuid.UUID, noteID uuid.UUID) error
}

// NotesState is the widget's list state. There is no error state: add
// and delete failures surface as input- or row-scoped statuses and the
// list stays in its prior loaded state.
type NotesState int

const (
	NotesLoading NotesState = iota
	NotesLoadedEmpty
	NotesLoadedNonEmpty
)

// NotesList is the dashboard notes widget: newest-first in-memory list
// with optimistic delete and rollback.
type NotesList struct {
	backend NoteBackend
	userID  uuid.UUID
	logger  *logger.Logger

	mu          sync.Mutex
	state       NotesState
	notes       []model.Note
	input       string
	inputStatus string
	rowStatus   map[uuid.UUID]string
}

func NewNotesList(backend NoteBackend, userID uuid.UUID, logger *logger.Logger) *NotesList {
	return &NotesList{
		backend:   backend,
		userID:    userID,
		logger:    logger,
		state:     NotesLoading,
		rowStatus: map[uuid.UUID]string{},
	}
}

// Load fetches the recent notes. A load failure is logged and the
// widget settles into the empty loaded state instead of staying stuck
// in loading.
func (l *NotesList) Load(ctx context.Context) {
	notes, err := l.backend.List(ctx, l.userID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.logger.Error("Notes widget: load failed",
			"user_id", l.userID,
			"error", err.Error())
		l.notes = nil
		l.state = NotesLoadedEmpty
		l.inputStatus = "Could not load notes."
		return
	}

	l.notes = notes
	l.state = stateFor(notes)
	l.inputStatus = ""
}

// State returns the widget's list state.
func (l *NotesList) State() NotesState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Notes returns a copy of the in-memory list, newest first.
func (l *NotesList) Notes() []model.Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Note, len(l.notes))
	copy(out, l.notes)
	return out
}

// Input returns the pending input text.
func (l *NotesList) Input() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.input
}

// SetInput updates the pending input text.
func (l *NotesList) SetInput(content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.input = content
}

// InputStatus returns the status attached to the input field.
func (l *NotesList) InputStatus() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inputStatus
}

// RowStatus returns the status attached to one row.
func (l *NotesList) RowStatus(id uuid.UUID) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rowStatus[id]
}

// Add inserts the pending input. Empty content never reaches the
// backend; on success the returned row is prepended and the input
// cleared.
func (l *NotesList) Add(ctx context.Context) error {
	l.mu.Lock()
	content := l.input
	l.mu.Unlock()

	note, err := l.backend.Add(ctx, l.userID, content)

	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case errors.Is(err, model.ErrEmptyNote):
		l.inputStatus = "Write something first."
		return err
	case errors.Is(err, model.ErrSessionMissing):
		l.inputStatus = "Sign in to add notes."
		return err
	case err != nil:
		l.logger.Error("Notes widget: add failed",
			"user_id", l.userID,
			"error", err.Error())
		l.inputStatus = "Could not add the note. Try again."
		return err
	}

	l.notes = append([]model.Note{note}, l.notes...)
	l.state = NotesLoadedNonEmpty
	l.input = ""
	l.inputStatus = ""
	return nil
}

// Delete removes the row immediately and issues the remote delete
// scoped to the owning user. A remote failure restores the exact prior
// list, order included.
func (l *NotesList) Delete(ctx context.Context, id uuid.UUID) error {
	l.mu.Lock()
	snapshot := make([]model.Note, len(l.notes))
	copy(snapshot, l.notes)
	l.mu.Unlock()

	err := Optimistic(snapshot,
		func() { l.removeRow(id) },
		func() error { return l.backend.Delete(ctx, l.userID, id) },
		func(prev []model.Note) { l.restore(prev) },
	)
	if err != nil {
		l.logger.Error("Notes widget: delete failed",
			"user_id", l.userID,
			"note_id", id,
			"error", err.Error())
		l.mu.Lock()
		l.rowStatus[id] = "Could not delete the note. Try again."
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	delete(l.rowStatus, id)
	l.mu.Unlock()
	return nil
}

func (l *NotesList) removeRow(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.notes[:0:0]
	for _, n := range l.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	l.notes = kept
	l.state = stateFor(kept)
}

func (l *NotesList) restore(prev []model.Note) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notes = prev
	l.state = stateFor(prev)
}

func stateFor(notes []model.Note) NotesState {
	if len(notes) == 0 {
		return NotesLoadedEmpty
	}
	return NotesLoadedNonEmpty
}
