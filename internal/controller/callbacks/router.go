package callbacks

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Callback Data Patterns
// ========================

const (
	BookingStatus  = "booking_status:"  // booking_status:<booking_id>:<status>
	Itinerary      = "itinerary:"       // itinerary:<booking_id>
	BookingRefresh = "booking_refresh:" // booking_refresh:<booking_id>
	Noop           = "noop"
)

// BookingStatusData callback data кнопки смены статуса
func BookingStatusData(bookingID string, status model.BookingStatus) string {
	return BookingStatus + bookingID + ":" + string(status)
}

// ItineraryData callback data кнопки маршрутной карты
func ItineraryData(bookingID string) string {
	return Itinerary + bookingID
}

// RefreshData callback data кнопки обновления карточки
func RefreshData(bookingID string) string {
	return BookingRefresh + bookingID
}

// ParseBookingStatus разбирает booking_status:<id>:<status>
func ParseBookingStatus(data string) (string, model.BookingStatus, error) {
	rest, ok := strings.CutPrefix(data, BookingStatus)
	if !ok {
		return "", "", fmt.Errorf("not a booking status callback: %q", data)
	}

	idx := strings.LastIndex(rest, ":")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", fmt.Errorf("invalid booking status callback: %q", data)
	}

	status := model.BookingStatus(rest[idx+1:])
	if !status.Valid() {
		return "", "", fmt.Errorf("unknown booking status %q", status)
	}
	return rest[:idx], status, nil
}

// parseID достаёт id после префикса
func parseID(data, prefix string) (string, error) {
	id := strings.TrimPrefix(data, prefix)
	if id == "" {
		return "", fmt.Errorf("empty id in callback %q", data)
	}
	return id, nil
}

// ========================
// Main Callback Router
// ========================

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h Actions, logger *zap.Logger) {
	data := callback.Data

	logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
		zap.String("user_name", callback.From.FirstName))

	switch {
	case data == Noop:
		h.AnswerCallback(ctx, b, callback.ID, "", false)

	case strings.HasPrefix(data, BookingStatus):
		bookingID, status, err := ParseBookingStatus(data)
		if err != nil {
			logger.Error("Failed to parse booking status callback", zap.Error(err), zap.String("data", data))
			h.AnswerCallback(ctx, b, callback.ID, "❌ Неверный формат", true)
			return
		}
		h.SetBookingStatus(ctx, b, callback, bookingID, status)

	case strings.HasPrefix(data, Itinerary):
		bookingID, err := parseID(data, Itinerary)
		if err != nil {
			h.AnswerCallback(ctx, b, callback.ID, "❌ Неверный формат", true)
			return
		}
		h.SendItinerary(ctx, b, callback, bookingID)

	case strings.HasPrefix(data, BookingRefresh):
		bookingID, err := parseID(data, BookingRefresh)
		if err != nil {
			h.AnswerCallback(ctx, b, callback.ID, "❌ Неверный формат", true)
			return
		}
		h.RefreshBooking(ctx, b, callback, bookingID)

	default:
		logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		h.AnswerCallback(ctx, b, callback.ID, "❌ Неизвестная команда", false)
	}
}
