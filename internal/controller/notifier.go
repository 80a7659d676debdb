package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/controller/formatting"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// ErrNoAdminChat уведомления некуда отправлять
var ErrNoAdminChat = errors.New("telegram admin chat is not configured")

// NotifyExpiringOptions отправляет в чат операторов список истекающих опций
func (c *BotController) NotifyExpiringOptions(ctx context.Context, entries []*model.FlightOptionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if c.adminChatID == 0 {
		return ErrNoAdminChat
	}

	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: c.adminChatID,
		Text:   formatting.FormatOptions(entries, time.Now(), true),
	})
	if err != nil {
		return fmt.Errorf("send option alert: %w", err)
	}

	c.logger.Info("Option expiry alert sent",
		zap.Int64("chat_id", c.adminChatID),
		zap.Int("options", len(entries)))
	return nil
}
