package cache

import (
	"fmt"
	"net/url"
	"strings"
)

// GET /api/bookings/{id}/overview
// booking:overview:{booking_id}
func BookingOverviewKey(bookingID string) string {
	return fmt.Sprintf("booking:overview:%s", url.PathEscape(strings.TrimSpace(bookingID)))
}

// GET /api/flight-options
func FlightOptionsKey() string {
	return "flight:options:active"
}

// Idempotency-Key заголовок POST запроса
// idempotency:{method}:{path}:{key}
func IdempotencyKey(method, path, key string) string {
	return fmt.Sprintf("idempotency:%s:%s:%s",
		strings.ToUpper(method), url.PathEscape(path), url.PathEscape(strings.TrimSpace(key)))
}

// Алерт об истечении опции рейса уже отправлен
// option:alert:{flight_id}:{expiry_date}
func OptionAlertKey(flightID, expiryDate string) string {
	return fmt.Sprintf("option:alert:%s:%s", url.PathEscape(strings.TrimSpace(flightID)), url.PathEscape(expiryDate))
}
