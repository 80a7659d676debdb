package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/travel"
	"go.uber.org/zap"
)

type FlightRepository interface {
	Create(ctx context.Context, f *model.Flight) error
	GetByID(ctx context.Context, id string) (*model.Flight, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*model.Flight, error)
	ListWithOptions(ctx context.Context) ([]*model.FlightOptionEntry, error)
	Update(ctx context.Context, f *model.Flight) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AirportResolver справочник аэропортов. Отсутствие аэропорта - не ошибка
type AirportResolver interface {
	GetByCode(ctx context.Context, code string) (*model.Airport, bool)
}

type FlightService struct {
	repo     FlightRepository
	airports AirportResolver
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewFlightService(repo FlightRepository, airports AirportResolver, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *FlightService {
	return &FlightService{
		repo:     repo,
		airports: airports,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Add добавляет перелёт в бронирование
func (s *FlightService) Add(ctx context.Context, f *model.Flight) (*model.Flight, error) {
	const action = "add flight"

	if err := s.prepare(ctx, action, f, true); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	s.invalidate(ctx, f.BookingID)
	s.logger.Info("Flight added",
		zap.String("flight_id", f.ID),
		zap.String("booking_id", f.BookingID),
		zap.String("route", f.From.Code+"-"+f.To.Code),
	)

	return f, nil
}

func (s *FlightService) Get(ctx context.Context, id string) (*model.Flight, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get flight: %w", err)
	}
	if f == nil {
		return nil, notFound("flight", id)
	}
	s.resolve(ctx, f)
	return f, nil
}

// ListByBooking перелёты бронирования с названиями аэропортов из справочника
func (s *FlightService) ListByBooking(ctx context.Context, bookingID string) ([]*model.Flight, error) {
	flights, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	for _, f := range flights {
		s.resolve(ctx, f)
	}
	return flights, nil
}

// Update перезаписывает перелёт. Последняя запись побеждает
func (s *FlightService) Update(ctx context.Context, f *model.Flight) (*model.Flight, error) {
	const action = "update flight"

	if err := s.prepare(ctx, action, f, false); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if existing == nil {
		return nil, notFound("flight", f.ID)
	}
	f.BookingID = existing.BookingID

	ok, err := s.repo.Update(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if !ok {
		return nil, notFound("flight", f.ID)
	}

	s.invalidate(ctx, f.BookingID)
	return f, nil
}

func (s *FlightService) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	if f == nil {
		return notFound("flight", id)
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}

	s.invalidate(ctx, f.BookingID)
	return nil
}

// ActiveOptions действующие опции (полные и не истёкшие), ближайшие к истечению первыми
func (s *FlightService) ActiveOptions(ctx context.Context, now time.Time) ([]*model.FlightOptionEntry, error) {
	entries, err := s.optionEntries(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*model.FlightOptionEntry, 0, len(entries))
	for _, e := range entries {
		if e.Flight != nil && e.Flight.Option.IsActive(now) {
			active = append(active, e)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Flight.Option.ExpiryDate < active[j].Flight.Option.ExpiryDate
	})

	return active, nil
}

// ExpiringOptions действующие опции, которые истекают в течение window
func (s *FlightService) ExpiringOptions(ctx context.Context, now time.Time, window time.Duration) ([]*model.FlightOptionEntry, error) {
	active, err := s.ActiveOptions(ctx, now)
	if err != nil {
		return nil, err
	}

	deadline := now.Add(window)
	expiring := make([]*model.FlightOptionEntry, 0, len(active))
	for _, e := range active {
		expiry, err := time.ParseInLocation(model.DateLayout, e.Flight.Option.ExpiryDate, now.Location())
		if err != nil {
			continue
		}
		if !expiry.After(deadline) {
			expiring = append(expiring, e)
		}
	}
	return expiring, nil
}

// optionEntries все перелёты с опциями. Список кэшируется и сбрасывается
// при любом изменении перелётов
func (s *FlightService) optionEntries(ctx context.Context) ([]*model.FlightOptionEntry, error) {
	key := cache.FlightOptionsKey()

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("Failed to read flight options from cache", zap.Error(err))
	} else if ok {
		var cached []*model.FlightOptionEntry
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	entries, err := s.repo.ListWithOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flight options: %w", err)
	}
	for _, e := range entries {
		if e.Flight != nil {
			s.resolve(ctx, e.Flight)
		}
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache flight options", zap.Error(err))
		}
	}

	return entries, nil
}

// prepare проверяет обязательные поля, нормализует коды и время,
// заполняет отображаемые поля и длительность
func (s *FlightService) prepare(ctx context.Context, action string, f *model.Flight, isNew bool) error {
	f.From.Code = strings.ToUpper(strings.TrimSpace(f.From.Code))
	f.To.Code = strings.ToUpper(strings.TrimSpace(f.To.Code))

	fields := [][2]string{
		{"date", f.Date},
		{"from_code", f.From.Code},
		{"to_code", f.To.Code},
	}
	if isNew {
		fields = append(fields, [2]string{"booking_id", f.BookingID})
	} else {
		fields = append(fields, [2]string{"id", f.ID})
	}
	if missing := requireFields(fields...); len(missing) > 0 {
		return validationError(action, "missing required fields", missing...)
	}

	var invalid []string
	for _, d := range []struct {
		field string
		value *string
	}{
		{"date", &f.Date},
		{"arrival_date", &f.ArrivalDate},
	} {
		if !normalizeDate(d.value) {
			invalid = append(invalid, d.field)
		}
	}
	if f.Option != nil {
		if !normalizeDate(&f.Option.Date) {
			invalid = append(invalid, "option_date")
		}
		if !normalizeDate(&f.Option.ExpiryDate) {
			invalid = append(invalid, "option_expiry_date")
		}
	}
	if len(invalid) > 0 {
		return validationError(action, "invalid date", invalid...)
	}

	f.From.Time = normalizeClock(f.From.Time)
	f.To.Time = normalizeClock(f.To.Time)
	if f.ArrivalDate == "" {
		f.ArrivalDate = f.Date
	}

	if f.From.Time != "" && f.To.Time != "" {
		duration, err := travel.FlightDuration(f.From.Time, f.To.Time, f.Date, f.ArrivalDate)
		switch {
		case errors.Is(err, travel.ErrNegativeDuration):
			return validationError(action, "arrival is before departure", "arrival_date", "to_time")
		case errors.Is(err, travel.ErrInvalidTime):
			return validationError(action, "invalid time", "from_time", "to_time")
		case errors.Is(err, travel.ErrInvalidDate):
			return validationError(action, "invalid date", "date", "arrival_date")
		case err != nil:
			return fmt.Errorf("%s: %w", action, err)
		}
		f.Duration = duration
	}

	if f.Option != nil && f.Option.Date != "" && f.Option.ExpiryDate == "" {
		f.Option.ExpiryDate = f.Option.Date
	}

	s.resolve(ctx, f)
	return nil
}

// resolve заполняет название, город и страну из справочника.
// Если аэропорта нет в справочнике, остаются сохранённые значения
func (s *FlightService) resolve(ctx context.Context, f *model.Flight) {
	resolveLocation(ctx, s.airports, &f.From)
	resolveLocation(ctx, s.airports, &f.To)
}

func resolveLocation(ctx context.Context, airports AirportResolver, loc *model.FlightLocation) {
	if loc.Code == "" || airports == nil {
		return
	}
	a, ok := airports.GetByCode(ctx, loc.Code)
	if !ok {
		return
	}
	if a.Name != "" {
		loc.Name = a.Name
	}
	if a.Municipality != "" {
		loc.City = a.Municipality
	}
	if a.Country != "" {
		loc.Country = a.Country
	}
}

// normalizeDate приводит ввод оператора (15.02.24, 15022024) к YYYY-MM-DD.
// ISO дата остаётся как есть, пустая допустима
func normalizeDate(date *string) bool {
	*date = strings.TrimSpace(*date)
	if *date == "" {
		return true
	}
	if _, err := time.Parse(model.DateLayout, *date); err == nil {
		return true
	}
	parsed, ok := travel.ParseUserDate(*date)
	if !ok {
		return false
	}
	*date = parsed
	return true
}

// normalizeClock приводит ввод оператора (0930, 9:30) к HH:MM
func normalizeClock(clock string) string {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return ""
	}
	if t, ok := travel.ParseUserTime(clock); ok {
		return t
	}
	return travel.FormatTime(clock)
}

func (s *FlightService) invalidate(ctx context.Context, bookingID string) {
	err := s.cache.Del(ctx, cache.BookingOverviewKey(bookingID), cache.FlightOptionsKey())
	if err != nil {
		s.logger.Warn("Failed to invalidate flight caches", zap.String("booking_id", bookingID), zap.Error(err))
	}
}
