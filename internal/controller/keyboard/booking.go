package keyboard

import (
	"github.com/Freeeeeet/agency_backoffice/internal/controller/callbacks"
	"github.com/Freeeeeet/agency_backoffice/internal/controller/formatting"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/go-telegram/bot/models"
)

var statusOrder = []model.BookingStatus{
	model.BookingStatusDraft,
	model.BookingStatusConfirmed,
	model.BookingStatusCancelled,
}

// BookingActions кнопки смены статуса (кроме текущего) и маршрутной карты
func BookingActions(bookingID string, current model.BookingStatus) *models.InlineKeyboardMarkup {
	statusRow := make([]models.InlineKeyboardButton, 0, len(statusOrder))
	for _, status := range statusOrder {
		if status == current {
			continue
		}
		display := formatting.GetBookingStatusDisplay(status)
		statusRow = append(statusRow, Button(display.Emoji+" "+display.Text, callbacks.BookingStatusData(bookingID, status)))
	}

	return NewBuilder().
		Row(statusRow...).
		Row(
			Button("🗺 Маршрут", callbacks.ItineraryData(bookingID)),
			Button("🔄 Обновить", callbacks.RefreshData(bookingID)),
		).
		Build()
}
