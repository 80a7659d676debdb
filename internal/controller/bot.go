package controller

import (
	"context"
	"regexp"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/controller/handlers"
	"github.com/Freeeeeet/agency_backoffice/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// dialogTTL сколько бот ждёт аргумент команды следующим сообщением
const dialogTTL = 10 * time.Minute

// plainText сообщения без команды
var plainText = regexp.MustCompile(`^[^/]`)

// Deps сервисы, которые использует бот
type Deps struct {
	Bookings handlers.BookingService
	Options  handlers.OptionService
	Notes    handlers.QuickNoteService
	Airports handlers.AirportSearcher
}

type BotController struct {
	bot         *bot.Bot
	handlers    *handlers.Handlers
	adminChatID int64
	logger      *zap.Logger
}

func NewBotController(botInstance *bot.Bot, deps Deps, adminChatID int64, logger *zap.Logger) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager(dialogTTL)

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		deps.Bookings,
		deps.Options,
		deps.Notes,
		deps.Airports,
		stateManager,
		adminChatID,
		logger,
	)

	return &BotController{
		bot:         botInstance,
		handlers:    cmdHandlers,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// commandPattern совпадает с /name, /name@bot и /name с аргументами
func commandPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`^/` + regexp.QuoteMeta(name) + `(@\S+)?(\s|$)`)
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := map[string]bot.HandlerFunc{
		"start":     c.handlers.HandleStart,
		"help":      c.handlers.HandleHelp,
		"cancel":    c.handlers.HandleCancel,
		"booking":   c.handlers.HandleBooking,
		"itinerary": c.handlers.HandleItinerary,
		"options":   c.handlers.HandleOptions,
		"airport":   c.handlers.HandleAirport,
		"note":      c.handlers.HandleNote,
		"notes":     c.handlers.HandleNotes,
	}
	for name, handler := range commands {
		c.bot.RegisterHandlerRegexp(bot.HandlerTypeMessageText, commandPattern(name), handler)
	}

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandlerRegexp(bot.HandlerTypeMessageText, plainText, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.handlers.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "booking", Description: "📋 Карточка бронирования"},
		{Command: "itinerary", Description: "🗺 Маршрутная карта"},
		{Command: "options", Description: "⏳ Активные опции рейсов"},
		{Command: "airport", Description: "✈️ Поиск аэропорта"},
		{Command: "note", Description: "🗒 Быстрая заметка"},
		{Command: "notes", Description: "📝 Последние заметки"},
		{Command: "cancel", Description: "❌ Отменить ввод"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены контекста
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...", zap.Int64("admin_chat_id", c.adminChatID))
	c.bot.Start(ctx)
	return nil
}
