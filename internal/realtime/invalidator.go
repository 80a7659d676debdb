package realtime

import (
	"context"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"go.uber.org/zap"
)

// bookingTables таблицы, из которых собирается обзор бронирования
var bookingTables = map[string]bool{
	"bookings":              true,
	"booking_flights":       true,
	"booking_hotels":        true,
	"booking_participants":  true,
	"booking_payments":      true,
	"booking_cancellations": true,
}

// SubscribeCacheInvalidation сбрасывает закешированный обзор бронирования
// при любом изменении связанных с ним строк
func SubscribeCacheInvalidation(hub *Hub, c cache.Cache, logger *zap.Logger) func() {
	return hub.Subscribe(AllTables, func(e Event) {
		keys := make([]string, 0, 2)
		if e.BookingID != "" && bookingTables[e.Table] {
			keys = append(keys, cache.BookingOverviewKey(e.BookingID))
		}
		if e.Table == "booking_flights" || e.Table == "bookings" || e.Table == "customers" {
			keys = append(keys, cache.FlightOptionsKey())
		}
		if len(keys) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Del(ctx, keys...); err != nil {
			logger.Warn("Failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
		}
	})
}
