package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/finance"
	"github.com/Freeeeeet/agency_backoffice/internal/metrics"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/Freeeeeet/agency_backoffice/internal/travel"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]*model.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Booking, error)
	LatestNumber(ctx context.Context, prefix string) (string, error)
	Update(ctx context.Context, b *model.Booking) (bool, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// BookingDetails составные части бронирования, которые грузятся отдельно
type BookingDetails interface {
	Flights(ctx context.Context, bookingID string) ([]*model.Flight, error)
	Hotels(ctx context.Context, bookingID string) ([]*model.Hotel, error)
	Participants(ctx context.Context, bookingID string) ([]*model.Participant, error)
	Payments(ctx context.Context, bookingID string) ([]*model.Payment, error)
}

// Overview карточка бронирования: состав, платежи, тип поездки и финансы
type Overview struct {
	Booking    *model.Booking    `json:"booking"`
	Payments   []*model.Payment  `json:"payments"`
	TravelType travel.TravelType `json:"travel_type"`
	Summary    finance.Summary   `json:"summary"`
}

type BookingService struct {
	repo     BookingRepository
	details  BookingDetails
	settings *SettingsStore
	cache    cache.Cache
	cacheTTL time.Duration
	tx       base.Transactor
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingService(
	repo BookingRepository,
	details BookingDetails,
	settings *SettingsStore,
	c cache.Cache,
	cacheTTL time.Duration,
	tx base.Transactor,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		details:  details,
		settings: settings,
		cache:    c,
		cacheTTL: cacheTTL,
		tx:       tx,
		logger:   logger,
		now:      time.Now,
	}
}

// NextBookingNumber номер вида YYNNNNNN, последовательность своя для каждого года
func NextBookingNumber(latest string, now time.Time) string {
	prefix := fmt.Sprintf("%02d", now.Year()%100)
	sequence := 1
	if len(latest) == 8 && latest[:2] == prefix {
		if n, err := strconv.Atoi(latest[2:]); err == nil {
			sequence = n + 1
		}
	}
	return fmt.Sprintf("%s%06d", prefix, sequence)
}

// Create создаёт бронирование с новым номером. Статус по умолчанию - черновик
func (s *BookingService) Create(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	const action = "create booking"

	if b.Status == "" {
		b.Status = model.BookingStatusDraft
	}
	if err := validateBooking(action, b); err != nil {
		return nil, err
	}

	now := s.now()
	prefix := fmt.Sprintf("%02d", now.Year()%100)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		latest, err := s.repo.LatestNumber(ctx, prefix)
		if err != nil {
			return err
		}
		b.BookingNumber = NextBookingNumber(latest, now)
		return s.repo.Create(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	metrics.IncBookingsCreated()
	s.logger.Info("Booking created",
		zap.String("booking_id", b.ID),
		zap.String("booking_number", b.BookingNumber),
		zap.String("customer_id", b.CustomerID),
	)

	return b, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if b == nil {
		return nil, notFound("booking", id)
	}
	return b, nil
}

func (s *BookingService) List(ctx context.Context, f repository.BookingFilter) ([]*model.Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, validationError("list bookings", "unknown status", "status")
	}
	bookings, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) ListByCustomer(ctx context.Context, customerID string) ([]*model.Booking, error) {
	bookings, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer bookings: %w", err)
	}
	return bookings, nil
}

// Update перезаписывает бронирование целиком, без проверки версии
func (s *BookingService) Update(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	const action = "update booking"

	if err := validateBooking(action, b); err != nil {
		return nil, err
	}

	ok, err := s.repo.Update(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if !ok {
		return nil, notFound("booking", b.ID)
	}

	s.invalidate(ctx, b.ID)
	return s.Get(ctx, b.ID)
}

// SetStatus меняет статус. Любой статус может следовать за любым
func (s *BookingService) SetStatus(ctx context.Context, id string, status model.BookingStatus) error {
	const action = "set booking status"

	if !status.Valid() {
		return validationError(action, "unknown status", "status")
	}

	ok, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if !ok {
		return notFound("booking", id)
	}

	s.invalidate(ctx, id)
	s.logger.Info("Booking status changed",
		zap.String("booking_id", id),
		zap.String("status", string(status)),
	)
	return nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if !ok {
		return notFound("booking", id)
	}

	s.invalidate(ctx, id)
	s.logger.Info("Booking deleted", zap.String("booking_id", id))
	return nil
}

// Load бронирование вместе с рейсами, отелями и участниками
func (s *BookingService) Load(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Flights, err = s.details.Flights(ctx, id); err != nil {
		return nil, fmt.Errorf("load booking flights: %w", err)
	}
	if b.Hotels, err = s.details.Hotels(ctx, id); err != nil {
		return nil, fmt.Errorf("load booking hotels: %w", err)
	}
	if b.Participants, err = s.details.Participants(ctx, id); err != nil {
		return nil, fmt.Errorf("load booking participants: %w", err)
	}

	return b, nil
}

// Overview собирает карточку бронирования. Результат кэшируется до следующего
// изменения бронирования (сбрасывается по событию из realtime)
func (s *BookingService) Overview(ctx context.Context, id string) (*Overview, error) {
	key := cache.BookingOverviewKey(id)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("Failed to read booking overview from cache", zap.String("booking_id", id), zap.Error(err))
	} else if ok {
		var cached Overview
		if err := json.Unmarshal(data, &cached); err == nil {
			metrics.IncCacheHit()
			return &cached, nil
		}
	}
	metrics.IncCacheMiss()

	b, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := s.details.Payments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking payments: %w", err)
	}

	travelType := travel.ClassifyBooking(b, s.settings.Snapshot())
	metrics.IncTravelType(string(travelType))

	overview := &Overview{
		Booking:    b,
		Payments:   payments,
		TravelType: travelType,
		Summary:    finance.Summarize(b.TotalAmount, b.PurchaseAmount, finance.PaidAmount(payments)),
	}

	if data, err := json.Marshal(overview); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache booking overview", zap.String("booking_id", id), zap.Error(err))
		}
	}

	return overview, nil
}

// invalidate сбрасывает кэш карточки. Ошибка кэша не ломает запись
func (s *BookingService) invalidate(ctx context.Context, bookingID string) {
	if err := s.cache.Del(ctx, cache.BookingOverviewKey(bookingID)); err != nil {
		s.logger.Warn("Failed to invalidate booking overview", zap.String("booking_id", bookingID), zap.Error(err))
	}
}

func validateBooking(action string, b *model.Booking) error {
	if !b.Status.Valid() {
		return validationError(action, "unknown status", "status")
	}
	var negative []string
	if b.TotalAmount < 0 {
		negative = append(negative, "total_amount")
	}
	if b.PurchaseAmount < 0 {
		negative = append(negative, "purchase_amount")
	}
	if len(negative) > 0 {
		return validationError(action, "amounts cannot be negative", negative...)
	}
	return nil
}
