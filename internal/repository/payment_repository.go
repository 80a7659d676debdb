package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	*base.Repository
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{Repository: base.NewRepository(pool)}
}

// Create записывает платёж по бронированию
func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO booking_payments (booking_id, payment_date, amount, method, reference, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		p.BookingID,
		p.Date,
		p.Amount,
		p.Method,
		p.Reference,
		p.Status,
		p.Notes,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

// ListByBooking платежи бронирования, новые сначала
func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID string) ([]*model.Payment, error) {
	query := `
		SELECT id, booking_id, payment_date, amount, method, reference, status, notes, created_at
		FROM booking_payments
		WHERE booking_id = $1
		ORDER BY payment_date DESC, created_at DESC
	`

	rows, err := r.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		var p model.Payment
		err := rows.Scan(&p.ID, &p.BookingID, &p.Date, &p.Amount, &p.Method, &p.Reference, &p.Status, &p.Notes, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}

// UpdateStatus меняет статус платежа
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) (bool, error) {
	affected, err := r.ExecAffected(ctx, `UPDATE booking_payments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}
	return affected > 0, nil
}

// Delete удаляет платёж
func (r *PaymentRepository) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM booking_payments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete payment: %w", err)
	}
	return affected > 0, nil
}
