package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `b.id, b.booking_number, COALESCE(b.customer_id, ''), b.status,
	b.total_amount, b.purchase_amount, b.car_rental, b.transfer, b.notes,
	b.created_at, b.updated_at`

// BookingFilter фильтры списка бронирований. Пустые поля не применяются
type BookingFilter struct {
	BookingNumber  string
	CustomerName   string
	CustomerNumber string
	Status         model.BookingStatus
	Limit          uint64
}

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	query := `
		INSERT INTO bookings (booking_number, customer_id, status, total_amount, purchase_amount, car_rental, transfer, notes)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		b.BookingNumber,
		b.CustomerID,
		b.Status,
		b.TotalAmount,
		b.PurchaseAmount,
		b.CarRental,
		b.Transfer,
		b.Notes,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает бронирование по ID вместе с клиентом
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	query, args, err := r.selectWithCustomer().Where(sq.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking query: %w", err)
	}

	b, err := scanBookingWithCustomer(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return b, nil
}

// List список бронирований по фильтрам, новые сначала
func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]*model.Booking, error) {
	b := r.selectWithCustomer().OrderBy("b.created_at DESC")

	if f.BookingNumber != "" {
		b = b.Where(sq.ILike{"b.booking_number": "%" + f.BookingNumber + "%"})
	}
	if f.CustomerName != "" {
		pattern := "%" + f.CustomerName + "%"
		b = b.Where(sq.Or{sq.ILike{"c.first_name": pattern}, sq.ILike{"c.last_name": pattern}})
	}
	if f.CustomerNumber != "" {
		b = b.Where(sq.ILike{"c.customer_number": "%" + f.CustomerNumber + "%"})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"b.status": f.Status})
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}

	rows, err := r.QueryBuilder(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBookingWithCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// ListByCustomer бронирования клиента
func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]*model.Booking, error) {
	rows, err := r.QueryBuilder(ctx, r.selectWithCustomer().
		Where(sq.Eq{"b.customer_id": customerID}).
		OrderBy("b.created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("list customer bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBookingWithCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// LatestNumber последний номер бронирования с префиксом (год)
func (r *BookingRepository) LatestNumber(ctx context.Context, prefix string) (string, error) {
	query := `
		SELECT booking_number
		FROM bookings
		WHERE booking_number LIKE $1
		ORDER BY booking_number DESC
		LIMIT 1
	`

	var number string
	err := r.QueryRow(ctx, query, prefix+"%").Scan(&number)
	if err != nil {
		if base.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get latest booking number: %w", err)
	}

	return number, nil
}

// Update перезаписывает основные поля бронирования. Последняя запись побеждает
func (r *BookingRepository) Update(ctx context.Context, b *model.Booking) (bool, error) {
	query := `
		UPDATE bookings
		SET customer_id = NULLIF($2, ''), status = $3, total_amount = $4, purchase_amount = $5,
		    car_rental = $6, transfer = $7, notes = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		b.ID,
		b.CustomerID,
		b.Status,
		b.TotalAmount,
		b.PurchaseAmount,
		b.CarRental,
		b.Transfer,
		b.Notes,
	).Scan(&b.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("update booking: %w", err)
	}

	return true, nil
}

// UpdateStatus меняет статус бронирования
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	affected, err := r.ExecAffected(ctx, query, id, status)
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}
	return affected > 0, nil
}

// Delete удаляет бронирование вместе с рейсами, отелями и платежами
func (r *BookingRepository) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete booking: %w", err)
	}
	return affected > 0, nil
}

func (r *BookingRepository) selectWithCustomer() sq.SelectBuilder {
	return base.Psql.
		Select(bookingColumns,
			"c.id", "c.customer_number", "c.salutation", "c.first_name", "c.last_name", "c.email", "c.phone").
		From("bookings b").
		LeftJoin("customers c ON c.id = b.customer_id")
}

func scanBookingWithCustomer(row pgx.Row) (*model.Booking, error) {
	var (
		b                                 model.Booking
		customerID, number, salutation    *string
		firstName, lastName, email, phone *string
	)

	err := row.Scan(
		&b.ID, &b.BookingNumber, &b.CustomerID, &b.Status,
		&b.TotalAmount, &b.PurchaseAmount, &b.CarRental, &b.Transfer, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
		&customerID, &number, &salutation, &firstName, &lastName, &email, &phone,
	)
	if err != nil {
		return nil, err
	}

	if customerID != nil {
		b.Customer = &model.Customer{
			ID:             *customerID,
			CustomerNumber: deref(number),
			Salutation:     deref(salutation),
			FirstName:      deref(firstName),
			LastName:       deref(lastName),
			Email:          deref(email),
			Phone:          deref(phone),
		}
	}

	return &b, nil
}
