package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const hotelColumns = `id, booking_id, name, location, accommodation, meal_plan,
	check_in, check_out, organizer, adults, children, babies,
	assigned_guests, net_price, gross_price, created_at`

type HotelRepository struct {
	*base.Repository
}

func NewHotelRepository(pool *pgxpool.Pool) *HotelRepository {
	return &HotelRepository{Repository: base.NewRepository(pool)}
}

// Create добавляет проживание в бронирование
func (r *HotelRepository) Create(ctx context.Context, h *model.Hotel) error {
	query := `
		INSERT INTO booking_hotels (
			booking_id, name, location, accommodation, meal_plan,
			check_in, check_out, organizer, adults, children, babies,
			assigned_guests, net_price, gross_price
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, hotelArgs(h)...).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("create hotel: %w", err)
	}

	return nil
}

// GetByID получает проживание по ID
func (r *HotelRepository) GetByID(ctx context.Context, id string) (*model.Hotel, error) {
	h, err := scanHotel(r.QueryRow(ctx, `SELECT `+hotelColumns+` FROM booking_hotels WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get hotel by id: %w", err)
	}
	return h, nil
}

// ListByBooking отели бронирования по дате заезда
func (r *HotelRepository) ListByBooking(ctx context.Context, bookingID string) ([]*model.Hotel, error) {
	query := `
		SELECT ` + hotelColumns + `
		FROM booking_hotels
		WHERE booking_id = $1
		ORDER BY check_in, created_at
	`

	rows, err := r.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list booking hotels: %w", err)
	}
	defer rows.Close()

	var hotels []*model.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}

	return hotels, rows.Err()
}

// Update перезаписывает проживание
func (r *HotelRepository) Update(ctx context.Context, h *model.Hotel) (bool, error) {
	query := `
		UPDATE booking_hotels
		SET name = $2, location = $3, accommodation = $4, meal_plan = $5,
		    check_in = $6, check_out = $7, organizer = $8, adults = $9, children = $10, babies = $11,
		    assigned_guests = $12, net_price = $13, gross_price = $14
		WHERE id = $1
	`

	args := hotelArgs(h)
	args[0] = h.ID

	affected, err := r.ExecAffected(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update hotel: %w", err)
	}
	return affected > 0, nil
}

// Delete удаляет проживание
func (r *HotelRepository) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM booking_hotels WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete hotel: %w", err)
	}
	return affected > 0, nil
}

func hotelArgs(h *model.Hotel) []interface{} {
	guests := h.AssignedGuests
	if guests == nil {
		guests = []model.HotelGuest{}
	}
	return []interface{}{
		h.BookingID, h.Name, h.Location, h.Accommodation, h.MealPlan,
		h.CheckIn, h.CheckOut, h.Organizer, h.Guests.Adults, h.Guests.Children, h.Guests.Babies,
		guests, h.Pricing.NetPrice, h.Pricing.GrossPrice,
	}
}

func scanHotel(row pgx.Row) (*model.Hotel, error) {
	var h model.Hotel
	err := row.Scan(
		&h.ID, &h.BookingID, &h.Name, &h.Location, &h.Accommodation, &h.MealPlan,
		&h.CheckIn, &h.CheckOut, &h.Organizer, &h.Guests.Adults, &h.Guests.Children, &h.Guests.Babies,
		&h.AssignedGuests, &h.Pricing.NetPrice, &h.Pricing.GrossPrice, &h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
