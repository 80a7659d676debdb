package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultSearchLimit = 50

// CustomerService методы сервиса клиентов, которые нужны хендлерам
type CustomerService interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Get(ctx context.Context, id string) (*model.Customer, error)
	Search(ctx context.Context, query string, limit uint64) ([]*model.Customer, error)
	Update(ctx context.Context, id string, p model.CustomerPatch) (*model.Customer, error)
	Delete(ctx context.Context, id string) error
}

// CustomerBookings бронирования клиента
type CustomerBookings interface {
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Booking, error)
}

type CustomerHandler struct {
	service  CustomerService
	bookings CustomerBookings
	logger   *zap.Logger
}

func NewCustomerHandler(service CustomerService, bookings CustomerBookings, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{service: service, bookings: bookings, logger: logger}
}

func (h *CustomerHandler) Routes(r chi.Router) {
	r.Get("/", h.Search)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/bookings", h.Bookings)
}

// POST /api/customers
// 201: созданный клиент с номером CYYMMNNNN
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c model.Customer
	if err := decodeJSON(r, &c); err != nil {
		writeBadJSON(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), &c)
	if err != nil {
		writeServiceError(w, h.logger, "create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /api/customers?q=...&limit=...
func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit == 0 {
		limit = defaultSearchLimit
	}

	customers, err := h.service.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")), limit)
	if err != nil {
		writeServiceError(w, h.logger, "search customers", err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "get customer", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// PATCH /api/customers/{id}
// Обязательные поля нельзя очистить
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.CustomerPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeBadJSON(w, err)
		return
	}

	c, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, h.logger, "update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, "delete customer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListByCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "list customer bookings", err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}
