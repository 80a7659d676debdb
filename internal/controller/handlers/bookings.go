package handlers

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/controller/callbacks"
	"github.com/Freeeeeet/agency_backoffice/internal/controller/formatting"
	"github.com/Freeeeeet/agency_backoffice/internal/controller/keyboard"
	"github.com/Freeeeeet/agency_backoffice/internal/controller/render"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository"
	"github.com/Freeeeeet/agency_backoffice/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const bookingSearchLimit = 10

// userMessage текст ошибки сервиса для оператора
func userMessage(err error) string {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Reason
	case errors.Is(err, service.ErrNotFound):
		return "не найдено"
	}
	return "внутренняя ошибка, попробуйте позже"
}

// pickBooking выбирает бронирование по номеру: точное совпадение или единственный результат
func pickBooking(number string, found []*model.Booking) *model.Booking {
	for _, b := range found {
		if strings.EqualFold(b.BookingNumber, number) {
			return b
		}
	}
	if len(found) == 1 {
		return found[0]
	}
	return nil
}

// findBooking ищет бронирование по номеру. Если номер неоднозначен, отправляет список вариантов
func (h *Handlers) findBooking(ctx context.Context, b *bot.Bot, chatID int64, number string) (*model.Booking, bool) {
	found, err := h.bookings.List(ctx, repository.BookingFilter{BookingNumber: number, Limit: bookingSearchLimit})
	if err != nil {
		h.logger.Error("Failed to search bookings", zap.String("number", number), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось найти бронирование: "+userMessage(err))
		return nil, false
	}

	if len(found) == 0 {
		h.sendMessage(ctx, b, chatID, "🔎 Бронирование "+number+" не найдено.")
		return nil, false
	}

	booking := pickBooking(number, found)
	if booking == nil {
		h.sendMessage(ctx, b, chatID, formatting.FormatBookingChoices(found))
		return nil, false
	}
	return booking, true
}

// showBooking отправляет карточку бронирования с кнопками
func (h *Handlers) showBooking(ctx context.Context, b *bot.Bot, chatID int64, number string) {
	booking, ok := h.findBooking(ctx, b, chatID, number)
	if !ok {
		return
	}

	overview, err := h.bookings.Overview(ctx, booking.ID)
	if err != nil {
		h.logger.Error("Failed to load booking overview", zap.String("booking_id", booking.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось загрузить бронирование: "+userMessage(err))
		return
	}

	h.sendMessageWithKeyboard(ctx, b, chatID,
		formatting.FormatBookingCard(overview),
		keyboard.BookingActions(booking.ID, overview.Booking.Status))
}

func (h *Handlers) itineraryByNumber(ctx context.Context, b *bot.Bot, chatID int64, number string) {
	booking, ok := h.findBooking(ctx, b, chatID, number)
	if !ok {
		return
	}
	if err := h.sendItinerary(ctx, b, chatID, booking.ID); err != nil {
		h.sendError(ctx, b, chatID, "❌ Не удалось построить маршрутную карту: "+userMessage(err))
	}
}

// sendItinerary рисует маршрутную карту и отправляет её фото
func (h *Handlers) sendItinerary(ctx context.Context, b *bot.Bot, chatID int64, bookingID string) error {
	overview, err := h.bookings.Overview(ctx, bookingID)
	if err != nil {
		h.logger.Error("Failed to load booking for itinerary", zap.String("booking_id", bookingID), zap.Error(err))
		return err
	}

	data, err := render.GenerateItineraryImage(render.Itinerary{
		Booking:     overview.Booking,
		TravelType:  overview.TravelType,
		GeneratedAt: h.now(),
	})
	if err != nil {
		h.logger.Error("Failed to render itinerary", zap.String("booking_id", bookingID), zap.Error(err))
		return err
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: "itinerary-" + overview.Booking.BookingNumber + ".png",
			Data:     bytes.NewReader(data),
		},
		Caption: "🗺 Маршрут по бронированию №" + overview.Booking.BookingNumber,
	})
	if err != nil {
		h.logger.Error("Failed to send itinerary photo", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

// ========================
// Callback actions
// ========================

// HandleCallbackQuery обрабатывает нажатия на inline кнопки
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	if msg := callback.Message.Message; msg != nil && !h.allowedChat(msg.Chat.ID) {
		h.logger.Warn("Rejected callback from foreign chat", zap.Int64("chat_id", msg.Chat.ID))
		h.AnswerCallback(ctx, b, callback.ID, "⛔ Нет доступа", true)
		return
	}

	callbacks.Route(ctx, b, callback, h, h.logger)
}

// SetBookingStatus меняет статус и перерисовывает карточку
func (h *Handlers) SetBookingStatus(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, bookingID string, status model.BookingStatus) {
	if err := h.bookings.SetStatus(ctx, bookingID, status); err != nil {
		h.logger.Error("Failed to set booking status",
			zap.String("booking_id", bookingID),
			zap.String("status", string(status)),
			zap.Error(err))
		h.AnswerCallback(ctx, b, callback.ID, "❌ Не удалось сменить статус: "+userMessage(err), true)
		return
	}

	h.logger.Info("Booking status changed from bot",
		zap.String("booking_id", bookingID),
		zap.String("status", string(status)),
		zap.Int64("user_id", callback.From.ID))

	display := formatting.GetBookingStatusDisplay(status)
	h.AnswerCallback(ctx, b, callback.ID, display.Emoji+" "+display.Text, false)
	h.editBookingCard(ctx, b, callback, bookingID)
}

// RefreshBooking перерисовывает карточку бронирования
func (h *Handlers) RefreshBooking(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, bookingID string) {
	h.AnswerCallback(ctx, b, callback.ID, "", false)
	h.editBookingCard(ctx, b, callback, bookingID)
}

// SendItinerary отправляет маршрутную карту в чат кнопки
func (h *Handlers) SendItinerary(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, bookingID string) {
	msg := callback.Message.Message
	if msg == nil {
		h.AnswerCallback(ctx, b, callback.ID, "❌ Сообщение недоступно", true)
		return
	}

	if err := h.sendItinerary(ctx, b, msg.Chat.ID, bookingID); err != nil {
		h.AnswerCallback(ctx, b, callback.ID, "❌ Не удалось построить маршрут: "+userMessage(err), true)
		return
	}
	h.AnswerCallback(ctx, b, callback.ID, "", false)
}

func (h *Handlers) editBookingCard(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, bookingID string) {
	msg := callback.Message.Message
	if msg == nil {
		return
	}

	overview, err := h.bookings.Overview(ctx, bookingID)
	if err != nil {
		h.logger.Error("Failed to reload booking overview", zap.String("booking_id", bookingID), zap.Error(err))
		return
	}

	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        formatting.FormatBookingCard(overview),
		ReplyMarkup: keyboard.BookingActions(bookingID, overview.Booking.Status),
	})
	if err != nil {
		// Telegram отвечает ошибкой, если текст не изменился
		h.logger.Debug("Failed to edit booking card", zap.String("booking_id", bookingID), zap.Error(err))
	}
}
