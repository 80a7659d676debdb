package model

import "time"

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID        string        `json:"id"`
	BookingID string        `json:"booking_id"`
	Date      string        `json:"date"`
	Amount    float64       `json:"amount"`
	Method    string        `json:"method"`
	Reference string        `json:"reference,omitempty"`
	Status    PaymentStatus `json:"status"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// InstallmentPayment отдельный платёж плательщика по плану рассрочки
type InstallmentPayment struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference,omitempty"`
}

// InstallmentPayer один из плательщиков по бронированию.
// PaidAmount всегда равен сумме Payments
type InstallmentPayer struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	TotalAmount float64              `json:"total_amount"`
	PaidAmount  float64              `json:"paid_amount"`
	Payments    []InstallmentPayment `json:"payments"`
}

type InstallmentPlan struct {
	ID          string              `json:"id"`
	BookingID   string              `json:"booking_id"`
	TotalAmount float64             `json:"total_amount"`
	Payers      []*InstallmentPayer `json:"payers"`
	StartDate   string              `json:"start_date"`
	Notes       string              `json:"notes,omitempty"`
}

type CancellationStatus string

const (
	CancellationStatusPending   CancellationStatus = "pending"
	CancellationStatusApproved  CancellationStatus = "approved"
	CancellationStatusRejected  CancellationStatus = "rejected"
	CancellationStatusCompleted CancellationStatus = "completed"
)

// CancellationPolicy запрос на отмену бронирования.
// RefundAmount = оплачено - CancellationFee
type CancellationPolicy struct {
	ID              string             `json:"id"`
	BookingID       string             `json:"booking_id"`
	CancellationFee float64            `json:"cancellation_fee"`
	RefundAmount    float64            `json:"refund_amount"`
	Deadline        string             `json:"deadline"`
	Reason          string             `json:"reason,omitempty"`
	Status          CancellationStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
