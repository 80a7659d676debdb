package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NoteRepository struct {
	*base.Repository
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт заметку
func (r *NoteRepository) Create(ctx context.Context, n *model.Note) error {
	query := `
		INSERT INTO notes (title, content)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	if err := r.QueryRow(ctx, query, n.Title, n.Content).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// List заметки, последние изменённые сначала
func (r *NoteRepository) List(ctx context.Context) ([]*model.Note, error) {
	rows, err := r.Query(ctx, `SELECT id, title, content, created_at, updated_at FROM notes ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, &n)
	}

	return notes, rows.Err()
}

// Update меняет заголовок и текст
func (r *NoteRepository) Update(ctx context.Context, n *model.Note) (bool, error) {
	query := `
		UPDATE notes SET title = $2, content = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(ctx, query, n.ID, n.Title, n.Content).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("update note: %w", err)
	}
	return true, nil
}

// Delete удаляет заметку
func (r *NoteRepository) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	return affected > 0, nil
}

// CreateQuick создаёт быструю заметку
func (r *NoteRepository) CreateQuick(ctx context.Context, n *model.QuickNote) error {
	err := r.QueryRow(ctx, `INSERT INTO quick_notes (text) VALUES ($1) RETURNING id, created_at`, n.Text).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create quick note: %w", err)
	}
	return nil
}

// ListQuick быстрые заметки, новые сначала
func (r *NoteRepository) ListQuick(ctx context.Context, limit int) ([]*model.QuickNote, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.Query(ctx, `SELECT id, text, created_at FROM quick_notes ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list quick notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.QuickNote
	for rows.Next() {
		var n model.QuickNote
		if err := rows.Scan(&n.ID, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quick note: %w", err)
		}
		notes = append(notes, &n)
	}

	return notes, rows.Err()
}

// DeleteQuick удаляет быструю заметку
func (r *NoteRepository) DeleteQuick(ctx context.Context, id string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM quick_notes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete quick note: %w", err)
	}
	return affected > 0, nil
}
