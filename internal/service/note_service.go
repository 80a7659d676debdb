package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"go.uber.org/zap"
)

type NoteRepository interface {
	Create(ctx context.Context, n *model.Note) error
	List(ctx context.Context) ([]*model.Note, error)
	Update(ctx context.Context, n *model.Note) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	CreateQuick(ctx context.Context, n *model.QuickNote) error
	ListQuick(ctx context.Context, limit int) ([]*model.QuickNote, error)
	DeleteQuick(ctx context.Context, id string) (bool, error)
}

// NoteService заметки и быстрые заметки сотрудников
type NoteService struct {
	repo   NoteRepository
	logger *zap.Logger
}

func NewNoteService(repo NoteRepository, logger *zap.Logger) *NoteService {
	return &NoteService{
		repo:   repo,
		logger: logger,
	}
}

func (s *NoteService) Create(ctx context.Context, n *model.Note) (*model.Note, error) {
	const action = "create note"

	n.Title = strings.TrimSpace(n.Title)
	if missing := requireFields([2]string{"title", n.Title}); len(missing) > 0 {
		return nil, validationError(action, "missing required fields", missing...)
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return n, nil
}

func (s *NoteService) List(ctx context.Context) ([]*model.Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) Update(ctx context.Context, n *model.Note) (*model.Note, error) {
	const action = "update note"

	n.Title = strings.TrimSpace(n.Title)
	if missing := requireFields([2]string{"id", n.ID}, [2]string{"title", n.Title}); len(missing) > 0 {
		return nil, validationError(action, "missing required fields", missing...)
	}

	ok, err := s.repo.Update(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if !ok {
		return nil, notFound("note", n.ID)
	}
	return n, nil
}

func (s *NoteService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if !ok {
		return notFound("note", id)
	}
	return nil
}

// AddQuick быстрая заметка из дашборда или бота
func (s *NoteService) AddQuick(ctx context.Context, text string) (*model.QuickNote, error) {
	const action = "add quick note"

	n := &model.QuickNote{Text: strings.TrimSpace(text)}
	if missing := requireFields([2]string{"text", n.Text}); len(missing) > 0 {
		return nil, validationError(action, "note text is empty", missing...)
	}

	if err := s.repo.CreateQuick(ctx, n); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	s.logger.Debug("Quick note added", zap.String("note_id", n.ID))
	return n, nil
}

func (s *NoteService) ListQuick(ctx context.Context, limit int) ([]*model.QuickNote, error) {
	notes, err := s.repo.ListQuick(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list quick notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) DeleteQuick(ctx context.Context, id string) error {
	ok, err := s.repo.DeleteQuick(ctx, id)
	if err != nil {
		return fmt.Errorf("delete quick note: %w", err)
	}
	if !ok {
		return notFound("quick note", id)
	}
	return nil
}
