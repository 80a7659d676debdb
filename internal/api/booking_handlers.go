package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository"
	"github.com/Freeeeeet/agency_backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingService методы сервиса бронирований, которые нужны хендлерам
type BookingService interface {
	Create(ctx context.Context, b *model.Booking) (*model.Booking, error)
	Load(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]*model.Booking, error)
	Update(ctx context.Context, b *model.Booking) (*model.Booking, error)
	SetStatus(ctx context.Context, id string, status model.BookingStatus) error
	Delete(ctx context.Context, id string) error
	Overview(ctx context.Context, id string) (*service.Overview, error)
}

// BookingExporter выгрузка списка бронирований в XLSX
type BookingExporter interface {
	ExportBookings(ctx context.Context, w io.Writer, f repository.BookingFilter) (int, error)
}

type BookingHandler struct {
	service  BookingService
	exporter BookingExporter
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingHandler(service BookingService, exporter BookingExporter, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, exporter: exporter, logger: logger, now: time.Now}
}

func (h *BookingHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/status", h.SetStatus)
	r.Get("/{id}/overview", h.Overview)
}

// GET /api/bookings?status=&booking_number=&customer=&customer_number=&limit=
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := bookingFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := h.service.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, h.logger, "list bookings", err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// POST /api/bookings
// 201: бронирование с номером YYNNNNNN, статус по умолчанию draft
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var b model.Booking
	if err := decodeJSON(r, &b); err != nil {
		writeBadJSON(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), &b)
	if err != nil {
		writeServiceError(w, h.logger, "create booking", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /api/bookings/{id}
// Бронирование вместе с рейсами, отелями и участниками
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "get booking", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// PUT /api/bookings/{id}
// Последняя запись побеждает
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var b model.Booking
	if err := decodeJSON(r, &b); err != nil {
		writeBadJSON(w, err)
		return
	}
	b.ID = chi.URLParam(r, "id")

	updated, err := h.service.Update(r.Context(), &b)
	if err != nil {
		writeServiceError(w, h.logger, "update booking", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, "delete booking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

// PATCH /api/bookings/{id}/status {"status": "confirmed"}
func (h *BookingHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	status := model.BookingStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err := h.service.SetStatus(r.Context(), id, status); err != nil {
		writeServiceError(w, h.logger, "set booking status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

// GET /api/bookings/{id}/overview
// Карточка: бронирование, платежи, тип поездки, финансовая сводка
func (h *BookingHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Overview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "booking overview", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// GET /api/bookings/export?status=...
// Книга собирается в памяти, чтобы ошибка не обрывала уже начатый ответ
func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := bookingFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if _, err := h.exporter.ExportBookings(r.Context(), &buf, f); err != nil {
		writeServiceError(w, h.logger, "export bookings", err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", h.now().Format(model.DateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func bookingFilter(r *http.Request) (repository.BookingFilter, error) {
	q := r.URL.Query()

	limit, err := queryLimit(r)
	if err != nil {
		return repository.BookingFilter{}, err
	}

	f := repository.BookingFilter{
		BookingNumber:  strings.TrimSpace(q.Get("booking_number")),
		CustomerName:   strings.TrimSpace(q.Get("customer")),
		CustomerNumber: strings.TrimSpace(q.Get("customer_number")),
		Status:         model.BookingStatus(strings.ToLower(strings.TrimSpace(q.Get("status")))),
		Limit:          limit,
	}
	if f.Status != "" && !f.Status.Valid() {
		return repository.BookingFilter{}, fmt.Errorf("unknown status %q", f.Status)
	}
	return f, nil
}
