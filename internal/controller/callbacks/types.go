package callbacks

import (
	"context"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Actions действия, которые вызывает роутер callback'ов
type Actions interface {
	SetBookingStatus(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, bookingID string, status model.BookingStatus)
	SendItinerary(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, bookingID string)
	RefreshBooking(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, bookingID string)
	AnswerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool)
}
