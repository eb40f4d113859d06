package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
)

// Note implements the dashboard notes widget operations. Notes are
// append-only per user; only list, add and delete exist.
type Note struct {
	noteStore model.NoteStore
	logger    *logger.Logger
}

func NewNote(noteStore model.NoteStore, logger *logger.Logger) *Note {
	return &Note{
		noteStore: noteStore,
		logger:    logger,
	}
}

// List returns the user's most recent notes, newest first, capped at
// NoteListLimit.
func (s *Note) List(ctx context.Context, userID uuid.UUID) ([]model.Note, error) {
	notes, err := s.noteStore.ListRecent(ctx, userID, model.NoteListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}

// Add inserts a note. Whitespace-only content is rejected before any
// store call; a resolved user identity is required.
func (s *Note) Add(ctx context.Context, userID uuid.UUID, content string) (model.Note, error) {
	if userID == uuid.Nil {
		return model.Note{}, model.ErrSessionMissing
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return model.Note{}, model.ErrEmptyNote
	}

	saved, err := s.noteStore.Create(ctx, model.Note{
		ID:      uuid.New(),
		UserID:  userID,
		Content: content,
	})
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to add note: %w", err)
	}

	return saved, nil
}

// Delete removes a note scoped to both the note id and the owning user.
func (s *Note) Delete(ctx context.Context, userID uuid.UUID, noteID uuid.UUID) error {
	err := s.noteStore.Delete(ctx, noteID, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrNotFound
	}
	if err != nil {
		s.logger.Error("Note service: failed to delete note",
			"user_id", userID,
			"note_id", noteID,
			"error", err.Error())
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}
