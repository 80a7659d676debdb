package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"go.uber.org/zap"
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *model.Participant) error
	ListByBooking(ctx context.Context, bookingID string) ([]*model.Participant, error)
	Update(ctx context.Context, p *model.Participant) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ParticipantService struct {
	repo   ParticipantRepository
	cache  cache.Cache
	logger *zap.Logger
}

func NewParticipantService(repo ParticipantRepository, c cache.Cache, logger *zap.Logger) *ParticipantService {
	return &ParticipantService{
		repo:   repo,
		cache:  c,
		logger: logger,
	}
}

// Add добавляет путешественника в бронирование
func (s *ParticipantService) Add(ctx context.Context, p *model.Participant) (*model.Participant, error) {
	const action = "add participant"

	if err := validateParticipant(action, p, [2]string{"booking_id", p.BookingID}); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	s.invalidate(ctx, p.BookingID)
	return p, nil
}

func (s *ParticipantService) ListByBooking(ctx context.Context, bookingID string) ([]*model.Participant, error) {
	participants, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// Update перезаписывает путешественника. BookingID нужен для сброса кэша карточки
func (s *ParticipantService) Update(ctx context.Context, p *model.Participant) (*model.Participant, error) {
	const action = "update participant"

	if err := validateParticipant(action, p, [2]string{"id", p.ID}); err != nil {
		return nil, err
	}

	ok, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if !ok {
		return nil, notFound("participant", p.ID)
	}

	s.invalidate(ctx, p.BookingID)
	return p, nil
}

func (s *ParticipantService) Delete(ctx context.Context, bookingID, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if !ok {
		return notFound("participant", id)
	}

	s.invalidate(ctx, bookingID)
	return nil
}

func (s *ParticipantService) invalidate(ctx context.Context, bookingID string) {
	if bookingID == "" {
		return
	}
	if err := s.cache.Del(ctx, cache.BookingOverviewKey(bookingID)); err != nil {
		s.logger.Warn("Failed to invalidate booking overview", zap.String("booking_id", bookingID), zap.Error(err))
	}
}

func validateParticipant(action string, p *model.Participant, key [2]string) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)

	missing := requireFields(
		key,
		[2]string{"first_name", p.FirstName},
		[2]string{"last_name", p.LastName},
	)
	if len(missing) > 0 {
		return validationError(action, "missing required fields", missing...)
	}
	return nil
}
