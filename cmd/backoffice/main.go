package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/airport"
	"github.com/Freeeeeet/agency_backoffice/internal/api"
	"github.com/Freeeeeet/agency_backoffice/internal/app"
	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/config"
	"github.com/Freeeeeet/agency_backoffice/internal/controller"
	"github.com/Freeeeeet/agency_backoffice/internal/metrics"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/realtime"
	"github.com/Freeeeeet/agency_backoffice/internal/repository"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/Freeeeeet/agency_backoffice/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dbMetricsInterval = 30 * time.Second
	kafkaQueueSize    = 256
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.Log.Level)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Back office stopped with error", zap.Error(err))
	}
	logger.Info("Back office stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting agency back office",
		zap.String("environment", cfg.Environment),
		zap.Bool("bot_enabled", cfg.BotEnabled()),
		zap.Bool("redis_enabled", cfg.Redis.Addr != ""),
		zap.Int("kafka_brokers", len(cfg.Kafka.Brokers)))

	// ---------- db ----------
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()
	if err := migrator.Run(ctx); err != nil {
		return err
	}

	metrics.Register()

	// ---------- cache ----------
	var c cache.Cache = cache.NewMemoryCache()
	if cfg.Redis.Addr != "" {
		c = cache.NewRedisCache(cfg.Redis.Addr)
	}
	defer c.Close()

	// ---------- repositories ----------
	tx := base.NewTxManager(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	hotelRepo := repository.NewHotelRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	installmentRepo := repository.NewInstallmentRepository(pool)
	cancellationRepo := repository.NewCancellationRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	maintenanceRepo := repository.NewMaintenanceRepository(pool)

	// ---------- settings ----------
	settings := service.NewSettingsStore(settingsRepo, tx, logger)
	if cfg.Agency.SettingsFile != "" {
		if err := settings.LoadFile(cfg.Agency.SettingsFile); err != nil {
			return err
		}
	}
	if err := settings.Load(ctx); err != nil {
		return err
	}
	if path := cfg.Agency.SettingsFile; path != "" {
		unsubscribe := settings.Subscribe(func(model.AgencySettings) {
			if err := settings.SaveFile(path); err != nil {
				logger.Error("Failed to save settings file", zap.String("path", path), zap.Error(err))
			}
		})
		defer unsubscribe()
	}

	// ---------- services ----------
	airports := airport.NewDefaultLookup(cfg.Agency.AirportsCSVPath, logger)

	flights := service.NewFlightService(flightRepo, airports, c, cfg.Redis.TTL, logger)
	hotels := service.NewHotelService(hotelRepo, c, logger)
	participants := service.NewParticipantService(participantRepo, c, logger)
	payments := service.NewPaymentService(paymentRepo, installmentRepo, cancellationRepo, bookingRepo, c, tx, logger)
	bookings := service.NewBookingService(
		bookingRepo,
		service.NewBookingParts(flights, hotels, participants, payments),
		settings,
		c,
		cfg.Redis.TTL,
		tx,
		logger,
	)
	customers := service.NewCustomerService(customerRepo, tx, logger)
	notes := service.NewNoteService(noteRepo, logger)
	chat := service.NewChatService(chatRepo, tx, logger)
	maintenance := service.NewMaintenanceService(maintenanceRepo, tx, logger)
	reports := service.NewReportService(bookings, paymentRepo, logger)

	g, gctx := errgroup.WithContext(ctx)

	// ---------- realtime ----------
	hub := realtime.NewHub(logger)
	unsubscribeCache := realtime.SubscribeCacheInvalidation(hub, c, logger)
	defer unsubscribeCache()

	listener := realtime.NewListener(pool, hub, logger)
	g.Go(func() error { return listener.Run(gctx) })

	if len(cfg.Kafka.Brokers) > 0 {
		forwarder := realtime.NewKafkaForwarder(
			realtime.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic),
			kafkaQueueSize,
			logger,
		)
		defer forwarder.Close()

		unsubscribeKafka := hub.Subscribe(realtime.AllTables, forwarder.Enqueue)
		defer unsubscribeKafka()
		g.Go(func() error { return forwarder.Run(gctx) })
	}

	metrics.StartDBCollectors(gctx, pool, dbMetricsInterval, logger)

	// ---------- http ----------
	router := api.NewRouter(&api.Handlers{
		Customers: api.NewCustomerHandler(customers, bookings, logger),
		Bookings:  api.NewBookingHandler(bookings, reports, logger),
		Travel:    api.NewTravelHandler(flights, hotels, participants, airports, logger),
		Payments:  api.NewPaymentHandler(payments, logger),
		Office:    api.NewOfficeHandler(notes, chat, settings, maintenance, logger),
		Events:    api.NewEventsHandler(hub, logger),
	}, api.Options{
		Cache:       c,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Health:      pool.Ping,
		Logger:      logger,
	})

	server := app.NewHTTPServer(cfg.HTTP.Port, router, logger)
	g.Go(func() error { return server.Run(gctx) })

	// ---------- bot ----------
	var notifier app.Notifier = app.NewLogNotifier(logger)
	if cfg.BotEnabled() {
		b, err := bot.New(cfg.Telegram.Token)
		if err != nil {
			return err
		}

		botController := controller.NewBotController(b, controller.Deps{
			Bookings: bookings,
			Options:  flights,
			Notes:    notes,
			Airports: airports,
		}, cfg.Telegram.AdminChatID, logger)

		if err := botController.RegisterHandlers(ctx); err != nil {
			return err
		}
		if cfg.Telegram.AdminChatID != 0 {
			notifier = botController
		}
		g.Go(func() error { return botController.Start(gctx) })
	}

	// ---------- scheduler ----------
	scheduler := app.NewScheduler(flights, notifier, c, cfg.Agency.OptionSweepInterval, cfg.Agency.OptionAlertWindow, logger)
	g.Go(func() error {
		scheduler.Run(gctx)
		return nil
	})

	return g.Wait()
}
