package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/metrics"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"go.uber.org/zap"
)

// OptionSource опции рейсов, истекающие в течение окна
type OptionSource interface {
	ExpiringOptions(ctx context.Context, now time.Time, window time.Duration) ([]*model.FlightOptionEntry, error)
}

// Notifier доставляет оператору список истекающих опций
type Notifier interface {
	NotifyExpiringOptions(ctx context.Context, entries []*model.FlightOptionEntry) error
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	options  OptionSource
	notifier Notifier
	cache    cache.Cache
	interval time.Duration
	window   time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	now      func() time.Time
}

// NewScheduler создаёт новый планировщик
func NewScheduler(
	options OptionSource,
	notifier Notifier,
	c cache.Cache,
	interval, window time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		options:  options,
		notifier: notifier,
		cache:    c,
		interval: interval,
		window:   window,
		logger:   logger,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Duration("interval", s.interval),
		zap.Duration("window", s.window),
	)

	go s.Run(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// Run периодически проверяет опции рейсов. Блокируется до остановки
func (s *Scheduler) Run(ctx context.Context) {
	// Первый запуск сразу при старте
	s.SweepOptions(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOptions(ctx)
		case <-s.stopChan:
			s.logger.Info("Option sweep task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Option sweep task cancelled")
			return
		}
	}
}

// SweepOptions отправляет алерт по опциям, которые истекают в течение окна.
// По каждой опции алерт уходит один раз: ключ в кеше живёт дольше окна
func (s *Scheduler) SweepOptions(ctx context.Context) int {
	entries, err := s.options.ExpiringOptions(ctx, s.now(), s.window)
	if err != nil {
		s.logger.Error("Failed to list expiring flight options", zap.Error(err))
		return 0
	}

	fresh := make([]*model.FlightOptionEntry, 0, len(entries))
	for _, e := range entries {
		if s.markAlerted(ctx, e) {
			fresh = append(fresh, e)
		}
	}
	if len(fresh) == 0 {
		s.logger.Debug("No new expiring flight options", zap.Int("expiring", len(entries)))
		return 0
	}

	if err := s.notifier.NotifyExpiringOptions(ctx, fresh); err != nil {
		s.logger.Error("Failed to send option expiry alert", zap.Int("options", len(fresh)), zap.Error(err))
		s.unmark(ctx, fresh)
		return 0
	}

	for range fresh {
		metrics.IncOptionAlerts()
	}
	s.logger.Info("Option expiry alert sent", zap.Int("options", len(fresh)))
	return len(fresh)
}

func (s *Scheduler) markAlerted(ctx context.Context, e *model.FlightOptionEntry) bool {
	if e.Flight == nil || e.Flight.Option == nil {
		return false
	}
	key := cache.OptionAlertKey(e.Flight.ID, e.Flight.Option.ExpiryDate)
	ok, err := s.cache.SetNX(ctx, key, []byte("1"), s.window+24*time.Hour)
	if err != nil {
		// Лучше повторный алерт, чем пропущенный
		s.logger.Warn("Failed to mark option alert", zap.String("flight_id", e.Flight.ID), zap.Error(err))
		return true
	}
	return ok
}

// unmark снимает отметки, чтобы следующий проход повторил отправку
func (s *Scheduler) unmark(ctx context.Context, entries []*model.FlightOptionEntry) {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, cache.OptionAlertKey(e.Flight.ID, e.Flight.Option.ExpiryDate))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.Warn("Failed to clear option alert marks", zap.Error(err))
	}
}

// LogNotifier пишет алерт в лог, когда бот не настроен
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyExpiringOptions(_ context.Context, entries []*model.FlightOptionEntry) error {
	for _, e := range entries {
		n.logger.Warn("Flight option expires soon",
			zap.String("booking_number", e.BookingNumber),
			zap.String("customer", e.CustomerName),
			zap.String("route", e.Flight.From.Code+"-"+e.Flight.To.Code),
			zap.String("expiry_date", e.Flight.Option.ExpiryDate),
		)
	}
	return nil
}
