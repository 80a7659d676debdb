package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultReconnectDelay = 3 * time.Second

// Listener держит отдельное соединение с LISTEN table_changes
// и переподключается с фиксированной паузой, если соединение упало
type Listener struct {
	pool           *pgxpool.Pool
	hub            *Hub
	logger         *zap.Logger
	reconnectDelay time.Duration
}

func NewListener(pool *pgxpool.Pool, hub *Hub, logger *zap.Logger) *Listener {
	return &Listener{
		pool:           pool,
		hub:            hub,
		logger:         logger,
		reconnectDelay: defaultReconnectDelay,
	}
}

// Run блокируется до отмены контекста
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("Starting change listener", zap.String("channel", Channel))

	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			l.logger.Info("Change listener stopped")
			return nil
		}

		metrics.IncRealtimeReconnect()
		l.logger.Warn("Change listener disconnected, reconnecting",
			zap.Error(err),
			zap.Duration("delay", l.reconnectDelay),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	// Соединение с активным LISTEN не возвращаем в пул
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		event, err := DecodeEvent(n.Payload)
		if err != nil {
			l.logger.Warn("Skipping malformed change event", zap.String("payload", n.Payload), zap.Error(err))
			continue
		}

		metrics.IncRealtimeEvent(event.Table, string(event.Action))
		l.hub.Publish(event)
	}
}
