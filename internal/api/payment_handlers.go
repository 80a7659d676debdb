package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/finance"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PaymentService платежи, рассрочка и отмена бронирования
type PaymentService interface {
	Record(ctx context.Context, p *model.Payment) (*model.Payment, error)
	List(ctx context.Context, bookingID string) ([]*model.Payment, error)
	PaidAmount(ctx context.Context, bookingID string) (float64, error)
	SetStatus(ctx context.Context, bookingID, id string, status model.PaymentStatus) error
	Delete(ctx context.Context, bookingID, id string) error

	GetPlan(ctx context.Context, bookingID string) (*model.InstallmentPlan, error)
	SavePlan(ctx context.Context, plan *model.InstallmentPlan) (*model.InstallmentPlan, error)
	AddPayer(ctx context.Context, bookingID, name string, totalAmount float64) (*model.InstallmentPlan, error)
	UpdatePayer(ctx context.Context, bookingID, payerID, name string, totalAmount float64) (*model.InstallmentPlan, error)
	RemovePayer(ctx context.Context, bookingID, payerID string) (*model.InstallmentPlan, error)
	AddInstallmentPayment(ctx context.Context, bookingID, payerID string, p model.InstallmentPayment) (*model.InstallmentPlan, error)
	UpdateInstallmentPayment(ctx context.Context, bookingID, payerID, paymentID string, p model.InstallmentPayment) (*model.InstallmentPlan, error)
	RemoveInstallmentPayment(ctx context.Context, bookingID, payerID, paymentID string) (*model.InstallmentPlan, error)

	CancellationDraft(ctx context.Context, bookingID string) (*finance.CancellationDraft, error)
	SubmitCancellation(ctx context.Context, c *model.CancellationPolicy) (*model.CancellationPolicy, error)
	GetCancellation(ctx context.Context, bookingID string) (*model.CancellationPolicy, error)
	UpdateCancellation(ctx context.Context, c *model.CancellationPolicy) (*model.CancellationPolicy, error)
	DeleteCancellation(ctx context.Context, id string) error
}

type PaymentHandler struct {
	service PaymentService
	logger  *zap.Logger
}

func NewPaymentHandler(service PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, logger: logger}
}

// BookingRoutes маршруты внутри /api/bookings
func (h *PaymentHandler) BookingRoutes(r chi.Router) {
	r.Get("/{id}/payments", h.List)
	r.Post("/{id}/payments", h.Record)
	r.Get("/{id}/payments/paid", h.Paid)
	r.Patch("/{id}/payments/{paymentID}/status", h.SetStatus)
	r.Delete("/{id}/payments/{paymentID}", h.Delete)

	r.Get("/{id}/installments", h.GetPlan)
	r.Put("/{id}/installments", h.SavePlan)
	r.Post("/{id}/installments/payers", h.AddPayer)
	r.Put("/{id}/installments/payers/{payerID}", h.UpdatePayer)
	r.Delete("/{id}/installments/payers/{payerID}", h.RemovePayer)
	r.Post("/{id}/installments/payers/{payerID}/payments", h.AddInstallmentPayment)
	r.Put("/{id}/installments/payers/{payerID}/payments/{paymentID}", h.UpdateInstallmentPayment)
	r.Delete("/{id}/installments/payers/{payerID}/payments/{paymentID}", h.RemoveInstallmentPayment)

	r.Get("/{id}/cancellation", h.GetCancellation)
	r.Get("/{id}/cancellation/draft", h.CancellationDraft)
	r.Post("/{id}/cancellation", h.SubmitCancellation)
}

func (h *PaymentHandler) CancellationRoutes(r chi.Router) {
	r.Put("/{cancellationID}", h.UpdateCancellation)
	r.Delete("/{cancellationID}", h.DeleteCancellation)
}

// --- платежи ---

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "list payments", err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// POST /api/bookings/{id}/payments
// Статус по умолчанию completed, дата по умолчанию сегодня
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var p model.Payment
	if err := decodeJSON(r, &p); err != nil {
		writeBadJSON(w, err)
		return
	}
	p.BookingID = chi.URLParam(r, "id")

	created, err := h.service.Record(r.Context(), &p)
	if err != nil {
		writeServiceError(w, h.logger, "record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /api/bookings/{id}/payments/paid
// Учитываются только проведённые платежи
func (h *PaymentHandler) Paid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	paid, err := h.service.PaidAmount(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "paid amount", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking_id": id, "paid_amount": paid})
}

func (h *PaymentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	id := chi.URLParam(r, "paymentID")
	status := model.PaymentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), id, status); err != nil {
		writeServiceError(w, h.logger, "set payment status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "paymentID")); err != nil {
		writeServiceError(w, h.logger, "delete payment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- рассрочка ---

type payerRequest struct {
	Name        string  `json:"name"`
	TotalAmount float64 `json:"total_amount"`
}

func (h *PaymentHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "get installment plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// PUT /api/bookings/{id}/installments
// Создаёт план или меняет его сумму, дату начала и заметки
func (h *PaymentHandler) SavePlan(w http.ResponseWriter, r *http.Request) {
	var plan model.InstallmentPlan
	if err := decodeJSON(r, &plan); err != nil {
		writeBadJSON(w, err)
		return
	}
	plan.BookingID = chi.URLParam(r, "id")

	saved, err := h.service.SavePlan(r.Context(), &plan)
	if err != nil {
		writeServiceError(w, h.logger, "save installment plan", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *PaymentHandler) AddPayer(w http.ResponseWriter, r *http.Request) {
	var req payerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	plan, err := h.service.AddPayer(r.Context(), chi.URLParam(r, "id"), req.Name, req.TotalAmount)
	if err != nil {
		writeServiceError(w, h.logger, "add installment payer", err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *PaymentHandler) UpdatePayer(w http.ResponseWriter, r *http.Request) {
	var req payerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	plan, err := h.service.UpdatePayer(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "payerID"), req.Name, req.TotalAmount)
	if err != nil {
		writeServiceError(w, h.logger, "update installment payer", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PaymentHandler) RemovePayer(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.RemovePayer(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "payerID"))
	if err != nil {
		writeServiceError(w, h.logger, "remove installment payer", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PaymentHandler) AddInstallmentPayment(w http.ResponseWriter, r *http.Request) {
	var p model.InstallmentPayment
	if err := decodeJSON(r, &p); err != nil {
		writeBadJSON(w, err)
		return
	}

	plan, err := h.service.AddInstallmentPayment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "payerID"), p)
	if err != nil {
		writeServiceError(w, h.logger, "add installment payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *PaymentHandler) UpdateInstallmentPayment(w http.ResponseWriter, r *http.Request) {
	var p model.InstallmentPayment
	if err := decodeJSON(r, &p); err != nil {
		writeBadJSON(w, err)
		return
	}

	plan, err := h.service.UpdateInstallmentPayment(
		r.Context(),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "payerID"),
		chi.URLParam(r, "paymentID"),
		p,
	)
	if err != nil {
		writeServiceError(w, h.logger, "update installment payment", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PaymentHandler) RemoveInstallmentPayment(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.RemoveInstallmentPayment(
		r.Context(),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "payerID"),
		chi.URLParam(r, "paymentID"),
	)
	if err != nil {
		writeServiceError(w, h.logger, "remove installment payment", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// --- отмена ---

// GET /api/bookings/{id}/cancellation/draft?fee=...
// Комиссия по умолчанию 10% от суммы бронирования
func (h *PaymentHandler) CancellationDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.CancellationDraft(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "cancellation draft", err)
		return
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("fee")); raw != "" {
		fee, err := strconv.ParseFloat(raw, 64)
		if err != nil || fee < 0 {
			writeError(w, http.StatusBadRequest, "fee must be a non-negative number")
			return
		}
		draft.SetFee(fee)
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *PaymentHandler) GetCancellation(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCancellation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "get cancellation", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// POST /api/bookings/{id}/cancellation
// Комиссия и срок обязательны, возврат считается от оплаченного
func (h *PaymentHandler) SubmitCancellation(w http.ResponseWriter, r *http.Request) {
	var c model.CancellationPolicy
	if err := decodeJSON(r, &c); err != nil {
		writeBadJSON(w, err)
		return
	}
	c.BookingID = chi.URLParam(r, "id")

	created, err := h.service.SubmitCancellation(r.Context(), &c)
	if err != nil {
		writeServiceError(w, h.logger, "submit cancellation", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PaymentHandler) UpdateCancellation(w http.ResponseWriter, r *http.Request) {
	var c model.CancellationPolicy
	if err := decodeJSON(r, &c); err != nil {
		writeBadJSON(w, err)
		return
	}
	c.ID = chi.URLParam(r, "cancellationID")

	updated, err := h.service.UpdateCancellation(r.Context(), &c)
	if err != nil {
		writeServiceError(w, h.logger, "update cancellation", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PaymentHandler) DeleteCancellation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCancellation(r.Context(), chi.URLParam(r, "cancellationID")); err != nil {
		writeServiceError(w, h.logger, "delete cancellation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
