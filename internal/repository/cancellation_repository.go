package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cancellationColumns = `id, booking_id, cancellation_fee, refund_amount, deadline, reason, status, created_at, updated_at`

type CancellationRepository struct {
	*base.Repository
}

func NewCancellationRepository(pool *pgxpool.Pool) *CancellationRepository {
	return &CancellationRepository{Repository: base.NewRepository(pool)}
}

// Create сохраняет запрос на отмену
func (r *CancellationRepository) Create(ctx context.Context, c *model.CancellationPolicy) error {
	query := `
		INSERT INTO booking_cancellations (booking_id, cancellation_fee, refund_amount, deadline, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		c.BookingID,
		c.CancellationFee,
		c.RefundAmount,
		c.Deadline,
		c.Reason,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create cancellation: %w", err)
	}

	return nil
}

// GetByID получает запрос на отмену по ID
func (r *CancellationRepository) GetByID(ctx context.Context, id string) (*model.CancellationPolicy, error) {
	c, err := scanCancellation(r.QueryRow(ctx, `SELECT `+cancellationColumns+` FROM booking_cancellations WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cancellation by id: %w", err)
	}
	return c, nil
}

// GetLatestByBooking последний запрос на отмену бронирования
func (r *CancellationRepository) GetLatestByBooking(ctx context.Context, bookingID string) (*model.CancellationPolicy, error) {
	query := `
		SELECT ` + cancellationColumns + `
		FROM booking_cancellations
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	c, err := scanCancellation(r.QueryRow(ctx, query, bookingID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest cancellation: %w", err)
	}
	return c, nil
}

// Update перезаписывает комиссию, возврат, срок, причину и статус
func (r *CancellationRepository) Update(ctx context.Context, c *model.CancellationPolicy) (bool, error) {
	query := `
		UPDATE booking_cancellations
		SET cancellation_fee = $2, refund_amount = $3, deadline = $4, reason = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, c.ID, c.CancellationFee, c.RefundAmount, c.Deadline, c.Reason, c.Status).Scan(&c.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("update cancellation: %w", err)
	}
	return true, nil
}

// Delete удаляет запрос на отмену
func (r *CancellationRepository) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM booking_cancellations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete cancellation: %w", err)
	}
	return affected > 0, nil
}

func scanCancellation(row pgx.Row) (*model.CancellationPolicy, error) {
	var c model.CancellationPolicy
	err := row.Scan(
		&c.ID, &c.BookingID, &c.CancellationFee, &c.RefundAmount,
		&c.Deadline, &c.Reason, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
