package finance

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/google/uuid"
)

var (
	ErrPayerNotFound   = errors.New("payer not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidPayer    = errors.New("payer name and amount are required")
	ErrInvalidPayment  = errors.New("payment amount is required")
)

// Ledger ведёт план рассрочки: плательщиков и их платежи.
// Каждая операция меняет список платежей и PaidAmount под одной блокировкой,
// так что PaidAmount всегда равен сумме платежей плательщика
type Ledger struct {
	mu   sync.Mutex
	plan *model.InstallmentPlan
}

// NewLedger оборачивает план. PaidAmount каждого плательщика пересчитывается по платежам
func NewLedger(plan *model.InstallmentPlan) *Ledger {
	if plan == nil {
		plan = &model.InstallmentPlan{}
	}
	for _, payer := range plan.Payers {
		payer.PaidAmount = sumPayments(payer.Payments)
	}
	return &Ledger{plan: plan}
}

// Plan возвращает копию плана
func (l *Ledger) Plan() model.InstallmentPlan {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := *l.plan
	out.Payers = make([]*model.InstallmentPayer, 0, len(l.plan.Payers))
	for _, p := range l.plan.Payers {
		payer := *p
		payer.Payments = append([]model.InstallmentPayment(nil), p.Payments...)
		out.Payers = append(out.Payers, &payer)
	}
	return out
}

// PaidAmount сумма, внесённая всеми плательщиками
func (l *Ledger) PaidAmount() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paidLocked()
}

// Remaining остаток по плану
func (l *Ledger) Remaining() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Outstanding(l.plan.TotalAmount, l.paidLocked())
}

func (l *Ledger) paidLocked() float64 {
	var paid float64
	for _, p := range l.plan.Payers {
		paid += p.PaidAmount
	}
	return paid
}

func (l *Ledger) AddPayer(name string, totalAmount float64) (model.InstallmentPayer, error) {
	if name == "" || totalAmount == 0 {
		return model.InstallmentPayer{}, ErrInvalidPayer
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	payer := &model.InstallmentPayer{
		ID:          uuid.NewString(),
		Name:        name,
		TotalAmount: totalAmount,
		Payments:    []model.InstallmentPayment{},
	}
	l.plan.Payers = append(l.plan.Payers, payer)
	return *payer, nil
}

// UpdatePayer меняет имя и сумму плательщика, платежи не трогаются
func (l *Ledger) UpdatePayer(payerID, name string, totalAmount float64) error {
	if name == "" || totalAmount == 0 {
		return ErrInvalidPayer
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	payer, _ := l.findPayer(payerID)
	if payer == nil {
		return fmt.Errorf("%w: %s", ErrPayerNotFound, payerID)
	}
	payer.Name = name
	payer.TotalAmount = totalAmount
	return nil
}

func (l *Ledger) RemovePayer(payerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, idx := l.findPayer(payerID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrPayerNotFound, payerID)
	}
	l.plan.Payers = append(l.plan.Payers[:idx], l.plan.Payers[idx+1:]...)
	return nil
}

// AddPayment добавляет платёж в конец списка и увеличивает PaidAmount
func (l *Ledger) AddPayment(payerID string, payment model.InstallmentPayment) (model.InstallmentPayment, error) {
	if payment.Amount == 0 {
		return model.InstallmentPayment{}, ErrInvalidPayment
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	payer, _ := l.findPayer(payerID)
	if payer == nil {
		return model.InstallmentPayment{}, fmt.Errorf("%w: %s", ErrPayerNotFound, payerID)
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}

	payer.Payments = append(payer.Payments, payment)
	payer.PaidAmount = sumPayments(payer.Payments)
	return payment, nil
}

// UpdatePayment заменяет платёж на месте. Возвращает разницу новой и старой суммы
func (l *Ledger) UpdatePayment(payerID, paymentID string, payment model.InstallmentPayment) (float64, error) {
	if payment.Amount == 0 {
		return 0, ErrInvalidPayment
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	payer, _ := l.findPayer(payerID)
	if payer == nil {
		return 0, fmt.Errorf("%w: %s", ErrPayerNotFound, payerID)
	}
	idx := findPayment(payer.Payments, paymentID)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}

	delta := payment.Amount - payer.Payments[idx].Amount
	payment.ID = paymentID
	payer.Payments[idx] = payment
	payer.PaidAmount = sumPayments(payer.Payments)
	return delta, nil
}

// RemovePayment удаляет платёж и уменьшает PaidAmount на его сумму
func (l *Ledger) RemovePayment(payerID, paymentID string) (model.InstallmentPayment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	payer, _ := l.findPayer(payerID)
	if payer == nil {
		return model.InstallmentPayment{}, fmt.Errorf("%w: %s", ErrPayerNotFound, payerID)
	}
	idx := findPayment(payer.Payments, paymentID)
	if idx < 0 {
		return model.InstallmentPayment{}, fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}

	removed := payer.Payments[idx]
	payer.Payments = append(payer.Payments[:idx], payer.Payments[idx+1:]...)
	payer.PaidAmount = sumPayments(payer.Payments)
	return removed, nil
}

func (l *Ledger) findPayer(payerID string) (*model.InstallmentPayer, int) {
	for i, p := range l.plan.Payers {
		if p.ID == payerID {
			return p, i
		}
	}
	return nil, -1
}

func findPayment(payments []model.InstallmentPayment, paymentID string) int {
	for i, p := range payments {
		if p.ID == paymentID {
			return i
		}
	}
	return -1
}

// sumPayments пересчёт по списку, а не накопление дельт: без дрейфа округления
func sumPayments(payments []model.InstallmentPayment) float64 {
	var sum float64
	for _, p := range payments {
		sum += p.Amount
	}
	return sum
}
