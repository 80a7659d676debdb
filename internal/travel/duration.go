package travel

import (
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
)

var (
	ErrInvalidTime      = errors.New("invalid time")
	ErrInvalidDate      = errors.New("invalid date")
	ErrNegativeDuration = errors.New("arrival is before departure")
)

const clockLayout = "15:04"

// FlightDuration считает длительность перелёта по местным времени и датам вылета/прилёта.
// Результат в формате "<H>h <M>m". Если дата прилёта пустая, используется дата вылета.
// Прилёт раньше вылета считается ошибкой ввода (ErrNegativeDuration).
func FlightDuration(departureTime, arrivalTime, departureDate, arrivalDate string) (string, error) {
	if arrivalDate == "" {
		arrivalDate = departureDate
	}

	departure, err := combine(departureDate, departureTime)
	if err != nil {
		return "", err
	}
	arrival, err := combine(arrivalDate, arrivalTime)
	if err != nil {
		return "", err
	}

	diff := arrival.Sub(departure)
	if diff < 0 {
		return "", fmt.Errorf("%w: %s %s -> %s %s", ErrNegativeDuration,
			departureDate, departureTime, arrivalDate, arrivalTime)
	}

	minutes := int(diff / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60), nil
}

// combine склеивает дату и время в один момент.
// Считаем в UTC: нас интересует разница "по часам на стене", без перевода часов.
func combine(date, clock string) (time.Time, error) {
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}
