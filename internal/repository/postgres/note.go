package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/awelch/personal-site/internal/model"
)

var _ model.NoteStore = (*NoteRepository)(nil)

type NoteRepository struct {
	db *Connection
}

func NewNoteRepository(db *Connection) *NoteRepository {
	return &NoteRepository{
		db: db,
	}
}

func (r *NoteRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]model.Note, error) {
	query := `SELECT id, user_id, content, created_at
			  FROM dashboard_notes WHERE user_id = $1
			  ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var note model.Note
		if err := rows.Scan(&note.ID, &note.UserID, &note.Content, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

func (r *NoteRepository) Create(ctx context.Context, note model.Note) (model.Note, error) {
	query := `INSERT INTO dashboard_notes (id, user_id, content)
			  VALUES ($1, $2, $3)
			  RETURNING id, user_id, content, created_at`

	var saved model.Note
	err := r.db.QueryRow(ctx, query, note.ID, note.UserID, note.Content).Scan(
		&saved.ID, &saved.UserID, &saved.Content, &saved.CreatedAt,
	)
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to create note: %w", err)
	}

	return saved, nil
}

// Delete removes the note scoped to both note id and owning user id.
func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `DELETE FROM dashboard_notes WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
