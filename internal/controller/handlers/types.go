package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/controller/state"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository"
	"github.com/Freeeeeet/agency_backoffice/internal/service"
	"go.uber.org/zap"
)

// BookingService поиск бронирований, карточка и смена статуса
type BookingService interface {
	List(ctx context.Context, f repository.BookingFilter) ([]*model.Booking, error)
	Overview(ctx context.Context, id string) (*service.Overview, error)
	SetStatus(ctx context.Context, id string, status model.BookingStatus) error
}

// OptionService активные опции рейсов
type OptionService interface {
	ActiveOptions(ctx context.Context, now time.Time) ([]*model.FlightOptionEntry, error)
}

// QuickNoteService быстрые заметки
type QuickNoteService interface {
	AddQuick(ctx context.Context, text string) (*model.QuickNote, error)
	ListQuick(ctx context.Context, limit int) ([]*model.QuickNote, error)
}

// AirportSearcher поиск по справочнику аэропортов
type AirportSearcher interface {
	Search(ctx context.Context, query string) []model.Airport
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	bookings     BookingService
	options      OptionService
	notes        QuickNoteService
	airports     AirportSearcher
	stateManager *state.Manager
	adminChatID  int64
	logger       *zap.Logger
	now          func() time.Time
}

// NewHandlers создаёт новый обработчик команд.
// adminChatID = 0 отключает проверку чата
func NewHandlers(
	bookings BookingService,
	options OptionService,
	notes QuickNoteService,
	airports AirportSearcher,
	stateManager *state.Manager,
	adminChatID int64,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		bookings:     bookings,
		options:      options,
		notes:        notes,
		airports:     airports,
		stateManager: stateManager,
		adminChatID:  adminChatID,
		logger:       logger,
		now:          time.Now,
	}
}
