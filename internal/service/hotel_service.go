package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"go.uber.org/zap"
)

type HotelRepository interface {
	Create(ctx context.Context, h *model.Hotel) error
	GetByID(ctx context.Context, id string) (*model.Hotel, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*model.Hotel, error)
	Update(ctx context.Context, h *model.Hotel) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type HotelService struct {
	repo   HotelRepository
	cache  cache.Cache
	logger *zap.Logger
}

func NewHotelService(repo HotelRepository, c cache.Cache, logger *zap.Logger) *HotelService {
	return &HotelService{
		repo:   repo,
		cache:  c,
		logger: logger,
	}
}

// Add добавляет проживание в бронирование
func (s *HotelService) Add(ctx context.Context, h *model.Hotel) (*model.Hotel, error) {
	const action = "add hotel"

	if err := prepareHotel(action, h, true); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	s.invalidate(ctx, h.BookingID)
	s.logger.Info("Hotel added",
		zap.String("hotel_id", h.ID),
		zap.String("booking_id", h.BookingID),
	)
	return h, nil
}

func (s *HotelService) ListByBooking(ctx context.Context, bookingID string) ([]*model.Hotel, error) {
	hotels, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	return hotels, nil
}

// Update перезаписывает проживание. Последняя запись побеждает
func (s *HotelService) Update(ctx context.Context, h *model.Hotel) (*model.Hotel, error) {
	const action = "update hotel"

	if err := prepareHotel(action, h, false); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, h.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if existing == nil {
		return nil, notFound("hotel", h.ID)
	}
	h.BookingID = existing.BookingID
	h.CreatedAt = existing.CreatedAt

	ok, err := s.repo.Update(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if !ok {
		return nil, notFound("hotel", h.ID)
	}

	s.invalidate(ctx, h.BookingID)
	return h, nil
}

func (s *HotelService) Delete(ctx context.Context, id string) error {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete hotel: %w", err)
	}
	if h == nil {
		return notFound("hotel", id)
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete hotel: %w", err)
	}

	s.invalidate(ctx, h.BookingID)
	return nil
}

func (s *HotelService) invalidate(ctx context.Context, bookingID string) {
	if err := s.cache.Del(ctx, cache.BookingOverviewKey(bookingID)); err != nil {
		s.logger.Warn("Failed to invalidate booking overview", zap.String("booking_id", bookingID), zap.Error(err))
	}
}

func prepareHotel(action string, h *model.Hotel, isNew bool) error {
	fields := [][2]string{
		{"name", h.Name},
		{"check_in", h.CheckIn},
		{"check_out", h.CheckOut},
	}
	if isNew {
		fields = append(fields, [2]string{"booking_id", h.BookingID})
	} else {
		fields = append(fields, [2]string{"id", h.ID})
	}
	if missing := requireFields(fields...); len(missing) > 0 {
		return validationError(action, "missing required fields", missing...)
	}

	// даты в формате YYYY-MM-DD сравниваются как строки
	if h.CheckOut < h.CheckIn {
		return validationError(action, "check-out is before check-in", "check_out")
	}
	if h.Pricing.NetPrice < 0 || h.Pricing.GrossPrice < 0 {
		return validationError(action, "prices cannot be negative", "pricing")
	}

	if h.AssignedGuests == nil {
		h.AssignedGuests = []model.HotelGuest{}
	}
	if h.Guests == (model.GuestCount{}) {
		h.Guests = countGuests(h.AssignedGuests)
	}
	for i := range h.AssignedGuests {
		g := &h.AssignedGuests[i]
		g.Type = model.GuestType(strings.ToLower(string(g.Type)))
		if g.Type == "" {
			g.Type = model.GuestTypeAdult
		}
	}
	return nil
}

// countGuests считает гостей по типам. Гость без типа считается взрослым
func countGuests(guests []model.HotelGuest) model.GuestCount {
	var c model.GuestCount
	for _, g := range guests {
		switch model.GuestType(strings.ToLower(string(g.Type))) {
		case model.GuestTypeChild:
			c.Children++
		case model.GuestTypeBaby:
			c.Babies++
		default:
			c.Adults++
		}
	}
	return c
}
