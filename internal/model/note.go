package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoteListLimit caps how many recent notes are fetched for the widget.
const NoteListLimit = 20

// NoteStore defines persistence operations for dashboard notes.
type NoteStore interface {
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]Note, error)
	Create(ctx context.Context, note Note) (Note, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

// Note belongs to exactly one user and is ordered newest first.
type Note struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Content   string
	CreatedAt time.Time
}
