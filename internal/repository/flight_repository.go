package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `f.id, f.booking_id, f.flight_date,
	f.from_code, f.from_name, f.from_time, f.from_city, f.from_country,
	f.to_code, f.to_name, f.to_time, f.to_city, f.to_country,
	f.carrier, f.flight_number, f.duration, f.baggage, f.arrival_date,
	f.organizer, f.travel_reason, f.travel_status, f.processing_status, f.comments,
	f.flight_option, f.pnr, f.price, f.created_at`

type FlightRepository struct {
	*base.Repository
}

func NewFlightRepository(pool *pgxpool.Pool) *FlightRepository {
	return &FlightRepository{Repository: base.NewRepository(pool)}
}

// Create добавляет сегмент перелёта в бронирование
func (r *FlightRepository) Create(ctx context.Context, f *model.Flight) error {
	query := `
		INSERT INTO booking_flights (
			booking_id, flight_date,
			from_code, from_name, from_time, from_city, from_country,
			to_code, to_name, to_time, to_city, to_country,
			carrier, flight_number, duration, baggage, arrival_date,
			organizer, travel_reason, travel_status, processing_status, comments,
			flight_option, pnr, price
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, flightArgs(f)...).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create flight: %w", err)
	}

	return nil
}

// GetByID получает сегмент по ID
func (r *FlightRepository) GetByID(ctx context.Context, id string) (*model.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM booking_flights f WHERE f.id = $1`

	f, err := scanFlight(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get flight by id: %w", err)
	}

	return f, nil
}

// ListByBooking сегменты бронирования в порядке добавления
func (r *FlightRepository) ListByBooking(ctx context.Context, bookingID string) ([]*model.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM booking_flights f
		WHERE f.booking_id = $1
		ORDER BY f.flight_date, f.created_at
	`

	rows, err := r.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list booking flights: %w", err)
	}
	defer rows.Close()

	var flights []*model.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, f)
	}

	return flights, rows.Err()
}

// ListWithOptions сегменты, у которых есть опция, вместе с номером бронирования и клиентом.
// Проверка срока опции выполняется в сервисе
func (r *FlightRepository) ListWithOptions(ctx context.Context) ([]*model.FlightOptionEntry, error) {
	query := `
		SELECT ` + flightColumns + `, b.booking_number,
		       COALESCE(c.first_name || ' ' || c.last_name, '')
		FROM booking_flights f
		JOIN bookings b ON b.id = f.booking_id
		LEFT JOIN customers c ON c.id = b.customer_id
		WHERE f.flight_option IS NOT NULL
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list flight options: %w", err)
	}
	defer rows.Close()

	var entries []*model.FlightOptionEntry
	for rows.Next() {
		var (
			f             model.Flight
			bookingNumber string
			customerName  string
		)
		dest := append(flightDest(&f), &bookingNumber, &customerName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan flight option: %w", err)
		}
		entries = append(entries, &model.FlightOptionEntry{
			Flight:        &f,
			BookingID:     f.BookingID,
			BookingNumber: bookingNumber,
			CustomerName:  customerName,
		})
	}

	return entries, rows.Err()
}

// Update перезаписывает сегмент
func (r *FlightRepository) Update(ctx context.Context, f *model.Flight) (bool, error) {
	query := `
		UPDATE booking_flights
		SET flight_date = $2,
		    from_code = $3, from_name = $4, from_time = $5, from_city = $6, from_country = $7,
		    to_code = $8, to_name = $9, to_time = $10, to_city = $11, to_country = $12,
		    carrier = $13, flight_number = $14, duration = $15, baggage = $16, arrival_date = $17,
		    organizer = $18, travel_reason = $19, travel_status = $20, processing_status = $21, comments = $22,
		    flight_option = $23, pnr = $24, price = $25
		WHERE id = $1
	`

	args := flightArgs(f)
	args[0] = f.ID

	affected, err := r.ExecAffected(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update flight: %w", err)
	}
	return affected > 0, nil
}

// Delete удаляет сегмент
func (r *FlightRepository) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM booking_flights WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete flight: %w", err)
	}
	return affected > 0, nil
}

// flightArgs аргументы в порядке колонок INSERT, первым идёт booking_id
func flightArgs(f *model.Flight) []interface{} {
	return []interface{}{
		f.BookingID, f.Date,
		f.From.Code, f.From.Name, f.From.Time, f.From.City, f.From.Country,
		f.To.Code, f.To.Name, f.To.Time, f.To.City, f.To.Country,
		f.Carrier, f.FlightNumber, f.Duration, f.Baggage, f.ArrivalDate,
		f.Organizer, f.TravelReason, f.TravelStatus, f.ProcessingStatus, f.Comments,
		f.Option, f.PNR, f.Price,
	}
}

func flightDest(f *model.Flight) []interface{} {
	return []interface{}{
		&f.ID, &f.BookingID, &f.Date,
		&f.From.Code, &f.From.Name, &f.From.Time, &f.From.City, &f.From.Country,
		&f.To.Code, &f.To.Name, &f.To.Time, &f.To.City, &f.To.Country,
		&f.Carrier, &f.FlightNumber, &f.Duration, &f.Baggage, &f.ArrivalDate,
		&f.Organizer, &f.TravelReason, &f.TravelStatus, &f.ProcessingStatus, &f.Comments,
		&f.Option, &f.PNR, &f.Price, &f.CreatedAt,
	}
}

func scanFlight(row pgx.Row) (*model.Flight, error) {
	var f model.Flight
	if err := row.Scan(flightDest(&f)...); err != nil {
		return nil, err
	}
	return &f, nil
}
