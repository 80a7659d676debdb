package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNoteRepo struct {
	fakeIDs
	notes []*model.Note
	quick []*model.QuickNote
}

func (r *fakeNoteRepo) Create(_ context.Context, n *model.Note) error {
	n.ID = r.id("note")
	r.notes = append(r.notes, n)
	return nil
}

func (r *fakeNoteRepo) List(context.Context) ([]*model.Note, error) { return r.notes, nil }

func (r *fakeNoteRepo) Update(_ context.Context, n *model.Note) (bool, error) {
	for i, existing := range r.notes {
		if existing.ID == n.ID {
			r.notes[i] = n
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNoteRepo) Delete(_ context.Context, id string) (bool, error) {
	for i, n := range r.notes {
		if n.ID == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNoteRepo) CreateQuick(_ context.Context, n *model.QuickNote) error {
	n.ID = r.id("quick")
	r.quick = append(r.quick, n)
	return nil
}

func (r *fakeNoteRepo) ListQuick(_ context.Context, limit int) ([]*model.QuickNote, error) {
	if limit > 0 && len(r.quick) > limit {
		return r.quick[:limit], nil
	}
	return r.quick, nil
}

func (r *fakeNoteRepo) DeleteQuick(_ context.Context, id string) (bool, error) {
	for i, n := range r.quick {
		if n.ID == id {
			r.quick = append(r.quick[:i], r.quick[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestNoteService(t *testing.T) {
	t.Parallel()

	svc := NewNoteService(&fakeNoteRepo{}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.Note{Content: "no title"})
	assert.True(t, IsValidation(err))

	n, err := svc.Create(ctx, &model.Note{Title: " Supplier call ", Content: "Ask about MUC block"})
	require.NoError(t, err)
	assert.Equal(t, "Supplier call", n.Title)

	n.Content = "Block confirmed"
	_, err = svc.Update(ctx, n)
	require.NoError(t, err)

	_, err = svc.Update(ctx, &model.Note{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Block confirmed", notes[0].Content)

	require.NoError(t, svc.Delete(ctx, n.ID))
	assert.ErrorIs(t, svc.Delete(ctx, n.ID), ErrNotFound)
}

func TestNoteService_Quick(t *testing.T) {
	t.Parallel()

	svc := NewNoteService(&fakeNoteRepo{}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddQuick(ctx, "   ")
	assert.True(t, IsValidation(err))

	q, err := svc.AddQuick(ctx, " call Anna back ")
	require.NoError(t, err)
	assert.Equal(t, "call Anna back", q.Text)

	list, err := svc.ListQuick(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteQuick(ctx, q.ID))
	assert.ErrorIs(t, svc.DeleteQuick(ctx, q.ID), ErrNotFound)
}
