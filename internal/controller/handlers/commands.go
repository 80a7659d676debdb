package handlers

import (
	"context"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/controller/formatting"
	"github.com/Freeeeeet/agency_backoffice/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const (
	maxAirportResults = 10
	quickNotesLimit   = 10
)

const helpText = "📚 Справка по командам:\n\n" +
	"/booking <номер> - Карточка бронирования\n" +
	"/itinerary <номер> - Маршрутная карта (PNG)\n" +
	"/options - Активные опции рейсов\n" +
	"/airport <код или город> - Поиск аэропорта\n" +
	"/note <текст> - Быстрая заметка\n" +
	"/notes - Последние заметки\n" +
	"/cancel - Отменить ввод\n" +
	"/help - Показать эту справку"

// commandArgs возвращает текст после команды
func commandArgs(text string) string {
	_, args, found := strings.Cut(strings.TrimSpace(text), " ")
	if !found {
		return ""
	}
	return strings.TrimSpace(args)
}

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"👋 Привет, "+update.Message.From.FirstName+"!\n\n"+
			"Это бот бэк-офиса агентства: карточки бронирований, опции рейсов и заметки.\n\n"+helpText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего ввода
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	if h.stateManager.Take(chatID) == state.StateNone {
		h.sendMessage(ctx, b, chatID, "❌ Нет активных операций для отмены.")
		return
	}
	h.sendMessage(ctx, b, chatID, "✅ Операция отменена.")
}

// HandleBooking обрабатывает команду /booking <номер>
func (h *Handlers) HandleBooking(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	number := commandArgs(update.Message.Text)
	if number == "" {
		h.stateManager.SetState(chatID, state.StateAwaitingBooking)
		h.sendMessage(ctx, b, chatID, "🔎 Введите номер бронирования:")
		return
	}
	h.showBooking(ctx, b, chatID, number)
}

// HandleItinerary обрабатывает команду /itinerary <номер>
func (h *Handlers) HandleItinerary(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	number := commandArgs(update.Message.Text)
	if number == "" {
		h.stateManager.SetState(chatID, state.StateAwaitingRoute)
		h.sendMessage(ctx, b, chatID, "🗺 Введите номер бронирования для маршрутной карты:")
		return
	}
	h.itineraryByNumber(ctx, b, chatID, number)
}

// HandleAirport обрабатывает команду /airport <запрос>
func (h *Handlers) HandleAirport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	query := commandArgs(update.Message.Text)
	if query == "" {
		h.stateManager.SetState(chatID, state.StateAwaitingAirport)
		h.sendMessage(ctx, b, chatID, "✈️ Введите IATA код, город или название аэропорта:")
		return
	}
	h.searchAirports(ctx, b, chatID, query)
}

// HandleOptions обрабатывает команду /options
func (h *Handlers) HandleOptions(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	now := h.now()
	entries, err := h.options.ActiveOptions(ctx, now)
	if err != nil {
		h.logger.Error("Failed to load flight options", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось загрузить опции рейсов. Попробуйте позже.")
		return
	}
	h.sendMessage(ctx, b, chatID, formatting.FormatOptions(entries, now, false))
}

// HandleNote обрабатывает команду /note <текст>
func (h *Handlers) HandleNote(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	text := commandArgs(update.Message.Text)
	if text == "" {
		h.stateManager.SetState(chatID, state.StateAwaitingNote)
		h.sendMessage(ctx, b, chatID, "🗒 Введите текст заметки:")
		return
	}
	h.addNote(ctx, b, chatID, text)
}

// HandleNotes обрабатывает команду /notes
func (h *Handlers) HandleNotes(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	notes, err := h.notes.ListQuick(ctx, quickNotesLimit)
	if err != nil {
		h.logger.Error("Failed to list quick notes", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось загрузить заметки. Попробуйте позже.")
		return
	}
	h.sendMessage(ctx, b, chatID, formatting.FormatQuickNotes(notes))
}

// HandleTextMessage обрабатывает обычный текст в зависимости от состояния чата
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	currentState := h.stateManager.Take(chatID)

	h.logger.Debug("Text message",
		zap.Int64("chat_id", chatID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateAwaitingBooking:
		h.showBooking(ctx, b, chatID, text)
	case state.StateAwaitingRoute:
		h.itineraryByNumber(ctx, b, chatID, text)
	case state.StateAwaitingAirport:
		h.searchAirports(ctx, b, chatID, text)
	case state.StateAwaitingNote:
		h.addNote(ctx, b, chatID, text)
	default:
		h.sendMessage(ctx, b, chatID, "🤔 Не понимаю. Список команд: /help")
	}
}

func (h *Handlers) searchAirports(ctx context.Context, b *bot.Bot, chatID int64, query string) {
	airports := h.airports.Search(ctx, query)
	if len(airports) > maxAirportResults {
		airports = airports[:maxAirportResults]
	}
	h.sendMessage(ctx, b, chatID, formatting.FormatAirports(airports))
}

func (h *Handlers) addNote(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	note, err := h.notes.AddQuick(ctx, text)
	if err != nil {
		h.logger.Error("Failed to add quick note", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось сохранить заметку: "+userMessage(err))
		return
	}
	h.logger.Info("Quick note added from bot", zap.String("note_id", note.ID))
	h.sendMessage(ctx, b, chatID, "✅ Заметка сохранена.")
}
