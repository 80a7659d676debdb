package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// allowedChat проверяет что чат совпадает с чатом операторов
func (h *Handlers) allowedChat(chatID int64) bool {
	return h.adminChatID == 0 || chatID == h.adminChatID
}

// requireAdmin пропускает только сообщения из чата операторов
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if update.Message == nil {
		return false
	}

	chatID := update.Message.Chat.ID
	if h.allowedChat(chatID) {
		return true
	}

	h.logger.Warn("Rejected message from foreign chat",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", update.Message.From.ID))
	h.sendError(ctx, b, chatID, "⛔ Бот доступен только сотрудникам агентства.")
	return false
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.sendMessageWithKeyboard(ctx, b, chatID, text, nil)
}

// sendMessageWithKeyboard отправляет сообщение с inline клавиатурой
func (h *Handlers) sendMessageWithKeyboard(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// AnswerCallback отвечает на callback query, alert показывает всплывающее окно
func (h *Handlers) AnswerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		h.logger.Error("Failed to answer callback", zap.String("callback_id", callbackID), zap.Error(err))
	}
}
