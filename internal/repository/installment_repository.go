package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InstallmentRepository план рассрочки, плательщики и их платежи.
// Изменения платежей должны идти вместе с SyncPaidAmount в одной транзакции
type InstallmentRepository struct {
	*base.Repository
}

func NewInstallmentRepository(pool *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{Repository: base.NewRepository(pool)}
}

// GetPlan загружает план бронирования со всеми плательщиками и платежами
func (r *InstallmentRepository) GetPlan(ctx context.Context, bookingID string) (*model.InstallmentPlan, error) {
	query := `
		SELECT id, booking_id, total_amount, start_date, notes
		FROM installment_plans
		WHERE booking_id = $1
	`
	return r.loadPlan(ctx, query, bookingID)
}

// LockPlan как GetPlan, но блокирует строку плана до конца транзакции.
// Изменения платежей одного плана идут строго друг за другом, поэтому
// SyncPaidAmount видит все закоммиченные платежи
func (r *InstallmentRepository) LockPlan(ctx context.Context, bookingID string) (*model.InstallmentPlan, error) {
	query := `
		SELECT id, booking_id, total_amount, start_date, notes
		FROM installment_plans
		WHERE booking_id = $1
		FOR UPDATE
	`
	return r.loadPlan(ctx, query, bookingID)
}

func (r *InstallmentRepository) loadPlan(ctx context.Context, query, bookingID string) (*model.InstallmentPlan, error) {
	var plan model.InstallmentPlan
	err := r.QueryRow(ctx, query, bookingID).Scan(
		&plan.ID,
		&plan.BookingID,
		&plan.TotalAmount,
		&plan.StartDate,
		&plan.Notes,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get installment plan: %w", err)
	}

	payers, err := r.listPayers(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Payers = payers

	return &plan, nil
}

// UpsertPlan создаёт план для бронирования или обновляет его заголовок
func (r *InstallmentRepository) UpsertPlan(ctx context.Context, plan *model.InstallmentPlan) error {
	query := `
		INSERT INTO installment_plans (booking_id, total_amount, start_date, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (booking_id) DO UPDATE
		SET total_amount = EXCLUDED.total_amount,
		    start_date = EXCLUDED.start_date,
		    notes = EXCLUDED.notes,
		    updated_at = NOW()
		RETURNING id
	`

	err := r.QueryRow(ctx, query, plan.BookingID, plan.TotalAmount, plan.StartDate, plan.Notes).Scan(&plan.ID)
	if err != nil {
		return fmt.Errorf("upsert installment plan: %w", err)
	}

	return nil
}

// InsertPayer добавляет плательщика в конец списка
func (r *InstallmentRepository) InsertPayer(ctx context.Context, planID string, payer *model.InstallmentPayer) error {
	query := `
		INSERT INTO installment_payers (id, plan_id, name, total_amount, paid_amount, position)
		VALUES ($1, $2, $3, $4, $5,
		        (SELECT COALESCE(MAX(position), -1) + 1 FROM installment_payers WHERE plan_id = $2))
	`

	if err := r.Exec(ctx, query, payer.ID, planID, payer.Name, payer.TotalAmount, payer.PaidAmount); err != nil {
		return fmt.Errorf("insert installment payer: %w", err)
	}
	return nil
}

// UpdatePayer меняет имя и сумму плательщика
func (r *InstallmentRepository) UpdatePayer(ctx context.Context, payer *model.InstallmentPayer) (bool, error) {
	affected, err := r.ExecAffected(ctx,
		`UPDATE installment_payers SET name = $2, total_amount = $3 WHERE id = $1`,
		payer.ID, payer.Name, payer.TotalAmount,
	)
	if err != nil {
		return false, fmt.Errorf("update installment payer: %w", err)
	}
	return affected > 0, nil
}

// DeletePayer удаляет плательщика вместе с его платежами
func (r *InstallmentRepository) DeletePayer(ctx context.Context, payerID string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM installment_payers WHERE id = $1`, payerID)
	if err != nil {
		return false, fmt.Errorf("delete installment payer: %w", err)
	}
	return affected > 0, nil
}

// InsertPayment добавляет платёж в конец списка плательщика
func (r *InstallmentRepository) InsertPayment(ctx context.Context, payerID string, p model.InstallmentPayment) error {
	query := `
		INSERT INTO installment_payments (id, payer_id, payment_date, amount, method, reference, position)
		VALUES ($1, $2, $3, $4, $5, $6,
		        (SELECT COALESCE(MAX(position), -1) + 1 FROM installment_payments WHERE payer_id = $2))
	`

	if err := r.Exec(ctx, query, p.ID, payerID, p.Date, p.Amount, p.Method, p.Reference); err != nil {
		return fmt.Errorf("insert installment payment: %w", err)
	}
	return nil
}

// UpdatePayment заменяет платёж на месте, позиция сохраняется
func (r *InstallmentRepository) UpdatePayment(ctx context.Context, p model.InstallmentPayment) (bool, error) {
	affected, err := r.ExecAffected(ctx,
		`UPDATE installment_payments SET payment_date = $2, amount = $3, method = $4, reference = $5 WHERE id = $1`,
		p.ID, p.Date, p.Amount, p.Method, p.Reference,
	)
	if err != nil {
		return false, fmt.Errorf("update installment payment: %w", err)
	}
	return affected > 0, nil
}

// DeletePayment удаляет платёж
func (r *InstallmentRepository) DeletePayment(ctx context.Context, paymentID string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM installment_payments WHERE id = $1`, paymentID)
	if err != nil {
		return false, fmt.Errorf("delete installment payment: %w", err)
	}
	return affected > 0, nil
}

// SyncPaidAmount пересчитывает paid_amount плательщика по его платежам
func (r *InstallmentRepository) SyncPaidAmount(ctx context.Context, payerID string) (float64, error) {
	query := `
		UPDATE installment_payers
		SET paid_amount = (SELECT COALESCE(SUM(amount), 0) FROM installment_payments WHERE payer_id = $1)
		WHERE id = $1
		RETURNING paid_amount
	`

	var paid float64
	if err := r.QueryRow(ctx, query, payerID).Scan(&paid); err != nil {
		return 0, fmt.Errorf("sync paid amount: %w", err)
	}
	return paid, nil
}

func (r *InstallmentRepository) listPayers(ctx context.Context, planID string) ([]*model.InstallmentPayer, error) {
	query := `
		SELECT p.id, p.name, p.total_amount, p.paid_amount,
		       m.id, m.payment_date, m.amount, m.method, m.reference
		FROM installment_payers p
		LEFT JOIN installment_payments m ON m.payer_id = p.id
		WHERE p.plan_id = $1
		ORDER BY p.position, p.created_at, m.position, m.created_at
	`

	rows, err := r.Query(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("list installment payers: %w", err)
	}
	defer rows.Close()

	var payers []*model.InstallmentPayer
	byID := make(map[string]*model.InstallmentPayer)
	for rows.Next() {
		var (
			payer                              model.InstallmentPayer
			paymentID, date, method, reference *string
			amount                             *float64
		)
		err := rows.Scan(
			&payer.ID, &payer.Name, &payer.TotalAmount, &payer.PaidAmount,
			&paymentID, &date, &amount, &method, &reference,
		)
		if err != nil {
			return nil, fmt.Errorf("scan installment payer: %w", err)
		}

		current, ok := byID[payer.ID]
		if !ok {
			payer.Payments = []model.InstallmentPayment{}
			current = &payer
			byID[payer.ID] = current
			payers = append(payers, current)
		}
		if paymentID != nil {
			current.Payments = append(current.Payments, model.InstallmentPayment{
				ID:        *paymentID,
				Date:      deref(date),
				Amount:    deref(amount),
				Method:    deref(method),
				Reference: deref(reference),
			})
		}
	}

	return payers, rows.Err()
}
