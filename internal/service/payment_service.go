package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/finance"
	"github.com/Freeeeeet/agency_backoffice/internal/metrics"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	ListByBooking(ctx context.Context, bookingID string) ([]*model.Payment, error)
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type InstallmentRepository interface {
	GetPlan(ctx context.Context, bookingID string) (*model.InstallmentPlan, error)
	LockPlan(ctx context.Context, bookingID string) (*model.InstallmentPlan, error)
	UpsertPlan(ctx context.Context, plan *model.InstallmentPlan) error
	InsertPayer(ctx context.Context, planID string, payer *model.InstallmentPayer) error
	UpdatePayer(ctx context.Context, payer *model.InstallmentPayer) (bool, error)
	DeletePayer(ctx context.Context, payerID string) (bool, error)
	InsertPayment(ctx context.Context, payerID string, p model.InstallmentPayment) error
	UpdatePayment(ctx context.Context, p model.InstallmentPayment) (bool, error)
	DeletePayment(ctx context.Context, paymentID string) (bool, error)
	SyncPaidAmount(ctx context.Context, payerID string) (float64, error)
}

type CancellationRepository interface {
	Create(ctx context.Context, c *model.CancellationPolicy) error
	GetByID(ctx context.Context, id string) (*model.CancellationPolicy, error)
	GetLatestByBooking(ctx context.Context, bookingID string) (*model.CancellationPolicy, error)
	Update(ctx context.Context, c *model.CancellationPolicy) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// BookingReader нужен для суммы бронирования при расчёте отмены
type BookingReader interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
}

type PaymentService struct {
	payments      PaymentRepository
	installments  InstallmentRepository
	cancellations CancellationRepository
	bookings      BookingReader
	cache         cache.Cache
	tx            base.Transactor
	logger        *zap.Logger
	now           func() time.Time
}

func NewPaymentService(
	payments PaymentRepository,
	installments InstallmentRepository,
	cancellations CancellationRepository,
	bookings BookingReader,
	c cache.Cache,
	tx base.Transactor,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments:      payments,
		installments:  installments,
		cancellations: cancellations,
		bookings:      bookings,
		cache:         c,
		tx:            tx,
		logger:        logger,
		now:           time.Now,
	}
}

// Record записывает платёж по бронированию. Статус по умолчанию - проведён
func (s *PaymentService) Record(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	const action = "record payment"

	p.Method = strings.TrimSpace(p.Method)
	if p.Status == "" {
		p.Status = model.PaymentStatusCompleted
	}
	if p.Date == "" {
		p.Date = s.now().Format(model.DateLayout)
	}

	missing := requireFields(
		[2]string{"booking_id", p.BookingID},
		[2]string{"method", p.Method},
	)
	if p.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, validationError(action, "missing required fields", missing...)
	}
	if !validPaymentStatus(p.Status) {
		return nil, validationError(action, "unknown status", "status")
	}

	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	metrics.IncPaymentsRecorded("booking")
	s.invalidate(ctx, p.BookingID)
	s.logger.Info("Payment recorded",
		zap.String("payment_id", p.ID),
		zap.String("booking_id", p.BookingID),
		zap.Float64("amount", p.Amount),
		zap.String("status", string(p.Status)),
	)

	return p, nil
}

func (s *PaymentService) List(ctx context.Context, bookingID string) ([]*model.Payment, error) {
	payments, err := s.payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// PaidAmount сумма проведённых платежей бронирования
func (s *PaymentService) PaidAmount(ctx context.Context, bookingID string) (float64, error) {
	payments, err := s.List(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	return finance.PaidAmount(payments), nil
}

func (s *PaymentService) SetStatus(ctx context.Context, bookingID, id string, status model.PaymentStatus) error {
	const action = "set payment status"

	if !validPaymentStatus(status) {
		return validationError(action, "unknown status", "status")
	}

	ok, err := s.payments.UpdateStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if !ok {
		return notFound("payment", id)
	}

	s.invalidate(ctx, bookingID)
	return nil
}

func (s *PaymentService) Delete(ctx context.Context, bookingID, id string) error {
	ok, err := s.payments.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if !ok {
		return notFound("payment", id)
	}

	s.invalidate(ctx, bookingID)
	return nil
}

// --- рассрочка ---

// GetPlan план рассрочки бронирования
func (s *PaymentService) GetPlan(ctx context.Context, bookingID string) (*model.InstallmentPlan, error) {
	plan, err := s.installments.GetPlan(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get installment plan: %w", err)
	}
	if plan == nil {
		return nil, notFound("installment plan", bookingID)
	}
	return plan, nil
}

// SavePlan создаёт план или меняет его заголовок. Плательщики не трогаются
func (s *PaymentService) SavePlan(ctx context.Context, plan *model.InstallmentPlan) (*model.InstallmentPlan, error) {
	const action = "save installment plan"

	missing := requireFields([2]string{"booking_id", plan.BookingID})
	if plan.TotalAmount <= 0 {
		missing = append(missing, "total_amount")
	}
	if len(missing) > 0 {
		return nil, validationError(action, "missing required fields", missing...)
	}
	if plan.StartDate == "" {
		plan.StartDate = s.now().Format(model.DateLayout)
	}

	if err := s.installments.UpsertPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	return s.GetPlan(ctx, plan.BookingID)
}

func (s *PaymentService) AddPayer(ctx context.Context, bookingID, name string, totalAmount float64) (*model.InstallmentPlan, error) {
	const action = "add installment payer"

	return s.withLedger(ctx, action, bookingID, func(ctx context.Context, l *finance.Ledger, planID string) error {
		payer, err := l.AddPayer(strings.TrimSpace(name), totalAmount)
		if err != nil {
			return ledgerError(action, err)
		}
		return s.installments.InsertPayer(ctx, planID, &payer)
	})
}

func (s *PaymentService) UpdatePayer(ctx context.Context, bookingID, payerID, name string, totalAmount float64) (*model.InstallmentPlan, error) {
	const action = "update installment payer"

	return s.withLedger(ctx, action, bookingID, func(ctx context.Context, l *finance.Ledger, _ string) error {
		name = strings.TrimSpace(name)
		if err := l.UpdatePayer(payerID, name, totalAmount); err != nil {
			return ledgerError(action, err)
		}
		_, err := s.installments.UpdatePayer(ctx, &model.InstallmentPayer{
			ID:          payerID,
			Name:        name,
			TotalAmount: totalAmount,
		})
		return err
	})
}

func (s *PaymentService) RemovePayer(ctx context.Context, bookingID, payerID string) (*model.InstallmentPlan, error) {
	const action = "remove installment payer"

	return s.withLedger(ctx, action, bookingID, func(ctx context.Context, l *finance.Ledger, _ string) error {
		if err := l.RemovePayer(payerID); err != nil {
			return ledgerError(action, err)
		}
		_, err := s.installments.DeletePayer(ctx, payerID)
		return err
	})
}

// AddInstallmentPayment добавляет платёж плательщику. Строка платежа и paid_amount
// плательщика пишутся в одной транзакции
func (s *PaymentService) AddInstallmentPayment(ctx context.Context, bookingID, payerID string, p model.InstallmentPayment) (*model.InstallmentPlan, error) {
	const action = "add installment payment"

	if p.Date == "" {
		p.Date = s.now().Format(model.DateLayout)
	}

	plan, err := s.withLedger(ctx, action, bookingID, func(ctx context.Context, l *finance.Ledger, _ string) error {
		added, err := l.AddPayment(payerID, p)
		if err != nil {
			return ledgerError(action, err)
		}
		if err := s.installments.InsertPayment(ctx, payerID, added); err != nil {
			return err
		}
		return s.syncPaid(ctx, l, payerID)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPaymentsRecorded("installment")
	return plan, nil
}

func (s *PaymentService) UpdateInstallmentPayment(ctx context.Context, bookingID, payerID, paymentID string, p model.InstallmentPayment) (*model.InstallmentPlan, error) {
	const action = "update installment payment"

	return s.withLedger(ctx, action, bookingID, func(ctx context.Context, l *finance.Ledger, _ string) error {
		if _, err := l.UpdatePayment(payerID, paymentID, p); err != nil {
			return ledgerError(action, err)
		}
		p.ID = paymentID
		if _, err := s.installments.UpdatePayment(ctx, p); err != nil {
			return err
		}
		return s.syncPaid(ctx, l, payerID)
	})
}

func (s *PaymentService) RemoveInstallmentPayment(ctx context.Context, bookingID, payerID, paymentID string) (*model.InstallmentPlan, error) {
	const action = "remove installment payment"

	return s.withLedger(ctx, action, bookingID, func(ctx context.Context, l *finance.Ledger, _ string) error {
		if _, err := l.RemovePayment(payerID, paymentID); err != nil {
			return ledgerError(action, err)
		}
		if _, err := s.installments.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		return s.syncPaid(ctx, l, payerID)
	})
}

// withLedger загружает план в транзакции под блокировкой строки плана,
// применяет операцию к ledger и к базе. Возвращает план после операции
func (s *PaymentService) withLedger(
	ctx context.Context,
	action, bookingID string,
	fn func(ctx context.Context, l *finance.Ledger, planID string) error,
) (*model.InstallmentPlan, error) {
	var result model.InstallmentPlan

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.installments.LockPlan(ctx, bookingID)
		if err != nil {
			return err
		}
		if plan == nil {
			return notFound("installment plan", bookingID)
		}

		ledger := finance.NewLedger(plan)
		if err := fn(ctx, ledger, plan.ID); err != nil {
			return err
		}
		result = ledger.Plan()
		return nil
	})
	if err != nil {
		if IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	return &result, nil
}

// syncPaid пересчитывает paid_amount в базе и сверяет его с ledger
func (s *PaymentService) syncPaid(ctx context.Context, l *finance.Ledger, payerID string) error {
	stored, err := s.installments.SyncPaidAmount(ctx, payerID)
	if err != nil {
		return err
	}

	plan := l.Plan()
	for _, payer := range plan.Payers {
		if payer.ID == payerID && math.Abs(payer.PaidAmount-stored) > 0.005 {
			s.logger.Warn("Installment paid amount differs from stored value",
				zap.String("payer_id", payerID),
				zap.Float64("ledger", payer.PaidAmount),
				zap.Float64("stored", stored),
			)
		}
	}
	return nil
}

func ledgerError(action string, err error) error {
	switch {
	case errors.Is(err, finance.ErrInvalidPayer):
		return validationError(action, err.Error(), "name", "total_amount")
	case errors.Is(err, finance.ErrInvalidPayment):
		return validationError(action, err.Error(), "amount")
	case errors.Is(err, finance.ErrPayerNotFound), errors.Is(err, finance.ErrPaymentNotFound):
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	return err
}

// --- отмена ---

// CancellationDraft черновик отмены: комиссия 10% от суммы, возврат от оплаченного
func (s *PaymentService) CancellationDraft(ctx context.Context, bookingID string) (*finance.CancellationDraft, error) {
	total, paid, err := s.bookingTotals(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return finance.NewCancellationDraft(total, paid), nil
}

// SubmitCancellation создаёт запрос на отмену. Возврат считается от оплаченного на сейчас
func (s *PaymentService) SubmitCancellation(ctx context.Context, c *model.CancellationPolicy) (*model.CancellationPolicy, error) {
	const action = "submit cancellation"

	if c.Status == "" {
		c.Status = model.CancellationStatusPending
	}
	if err := validateCancellation(action, c); err != nil {
		return nil, err
	}

	_, paid, err := s.bookingTotals(ctx, c.BookingID)
	if err != nil {
		return nil, err
	}
	c.RefundAmount = finance.Refund(paid, c.CancellationFee)

	if err := s.cancellations.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	s.logger.Info("Cancellation submitted",
		zap.String("cancellation_id", c.ID),
		zap.String("booking_id", c.BookingID),
		zap.Float64("fee", c.CancellationFee),
		zap.Float64("refund", c.RefundAmount),
	)
	return c, nil
}

func (s *PaymentService) GetCancellation(ctx context.Context, bookingID string) (*model.CancellationPolicy, error) {
	c, err := s.cancellations.GetLatestByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get cancellation: %w", err)
	}
	if c == nil {
		return nil, notFound("cancellation", bookingID)
	}
	return c, nil
}

// UpdateCancellation меняет комиссию, срок, причину или статус. Возврат пересчитывается
func (s *PaymentService) UpdateCancellation(ctx context.Context, c *model.CancellationPolicy) (*model.CancellationPolicy, error) {
	const action = "update cancellation"

	existing, err := s.cancellations.GetByID(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if existing == nil {
		return nil, notFound("cancellation", c.ID)
	}
	c.BookingID = existing.BookingID
	if c.Status == "" {
		c.Status = existing.Status
	}

	if err := validateCancellation(action, c); err != nil {
		return nil, err
	}

	_, paid, err := s.bookingTotals(ctx, c.BookingID)
	if err != nil {
		return nil, err
	}
	c.RefundAmount = finance.Refund(paid, c.CancellationFee)

	ok, err := s.cancellations.Update(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if !ok {
		return nil, notFound("cancellation", c.ID)
	}
	c.CreatedAt = existing.CreatedAt
	return c, nil
}

func (s *PaymentService) DeleteCancellation(ctx context.Context, id string) error {
	ok, err := s.cancellations.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete cancellation: %w", err)
	}
	if !ok {
		return notFound("cancellation", id)
	}
	return nil
}

func (s *PaymentService) bookingTotals(ctx context.Context, bookingID string) (total, paid float64, err error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return 0, 0, fmt.Errorf("get booking: %w", err)
	}
	if b == nil {
		return 0, 0, notFound("booking", bookingID)
	}

	paid, err = s.PaidAmount(ctx, bookingID)
	if err != nil {
		return 0, 0, err
	}
	return b.TotalAmount, paid, nil
}

func (s *PaymentService) invalidate(ctx context.Context, bookingID string) {
	if bookingID == "" {
		return
	}
	if err := s.cache.Del(ctx, cache.BookingOverviewKey(bookingID)); err != nil {
		s.logger.Warn("Failed to invalidate booking overview", zap.String("booking_id", bookingID), zap.Error(err))
	}
}

func validateCancellation(action string, c *model.CancellationPolicy) error {
	var missing []string
	if c.BookingID == "" {
		missing = append(missing, "booking_id")
	}
	if c.CancellationFee <= 0 {
		missing = append(missing, "cancellation_fee")
	}
	if strings.TrimSpace(c.Deadline) == "" {
		missing = append(missing, "deadline")
	}
	if len(missing) > 0 {
		return validationError(action, "missing required fields", missing...)
	}

	switch c.Status {
	case model.CancellationStatusPending, model.CancellationStatusApproved,
		model.CancellationStatusRejected, model.CancellationStatusCompleted:
		return nil
	}
	return validationError(action, "unknown status", "status")
}

func validPaymentStatus(status model.PaymentStatus) bool {
	switch status {
	case model.PaymentStatusCompleted, model.PaymentStatusPending, model.PaymentStatusFailed:
		return true
	}
	return false
}
