package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// StartDBCollectors периодически обновляет gauge количества бронирований по статусам
func StartDBCollectors(ctx context.Context, db *pgxpool.Pool, interval time.Duration, logger *zap.Logger) {
	if db == nil {
		return
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		updateDBGauges(ctx, db, logger)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				updateDBGauges(ctx, db, logger)
			}
		}
	}()
}

func updateDBGauges(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) {
	rows, err := db.Query(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		logger.Warn("metrics db query bookings", zap.Error(err))
		return
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var cnt int64
		if err := rows.Scan(&status, &cnt); err != nil {
			logger.Warn("metrics db scan bookings", zap.Error(err))
			continue
		}
		SetBookingsByStatus(status, cnt)
	}
}
