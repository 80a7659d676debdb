package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultAirportLimit = 20

type FlightService interface {
	Add(ctx context.Context, f *model.Flight) (*model.Flight, error)
	Get(ctx context.Context, id string) (*model.Flight, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*model.Flight, error)
	Update(ctx context.Context, f *model.Flight) (*model.Flight, error)
	Delete(ctx context.Context, id string) error
	ActiveOptions(ctx context.Context, now time.Time) ([]*model.FlightOptionEntry, error)
	ExpiringOptions(ctx context.Context, now time.Time, window time.Duration) ([]*model.FlightOptionEntry, error)
}

type HotelService interface {
	Add(ctx context.Context, h *model.Hotel) (*model.Hotel, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*model.Hotel, error)
	Update(ctx context.Context, h *model.Hotel) (*model.Hotel, error)
	Delete(ctx context.Context, id string) error
}

type ParticipantService interface {
	Add(ctx context.Context, p *model.Participant) (*model.Participant, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*model.Participant, error)
	Update(ctx context.Context, p *model.Participant) (*model.Participant, error)
	Delete(ctx context.Context, bookingID, id string) error
}

// AirportSearcher справочник аэропортов. Недоступный справочник даёт пустой результат
type AirportSearcher interface {
	Search(ctx context.Context, query string) []model.Airport
	GetByCode(ctx context.Context, code string) (*model.Airport, bool)
}

// TravelHandler состав поездки: рейсы, отели, путешественники и справочник аэропортов
type TravelHandler struct {
	flights      FlightService
	hotels       HotelService
	participants ParticipantService
	airports     AirportSearcher
	logger       *zap.Logger
	now          func() time.Time
}

func NewTravelHandler(
	flights FlightService,
	hotels HotelService,
	participants ParticipantService,
	airports AirportSearcher,
	logger *zap.Logger,
) *TravelHandler {
	return &TravelHandler{
		flights:      flights,
		hotels:       hotels,
		participants: participants,
		airports:     airports,
		logger:       logger,
		now:          time.Now,
	}
}

// BookingRoutes маршруты внутри /api/bookings
func (h *TravelHandler) BookingRoutes(r chi.Router) {
	r.Get("/{id}/flights", h.ListFlights)
	r.Post("/{id}/flights", h.AddFlight)
	r.Get("/{id}/hotels", h.ListHotels)
	r.Post("/{id}/hotels", h.AddHotel)
	r.Get("/{id}/participants", h.ListParticipants)
	r.Post("/{id}/participants", h.AddParticipant)
	r.Put("/{id}/participants/{participantID}", h.UpdateParticipant)
	r.Delete("/{id}/participants/{participantID}", h.DeleteParticipant)
}

func (h *TravelHandler) FlightRoutes(r chi.Router) {
	r.Get("/{flightID}", h.GetFlight)
	r.Put("/{flightID}", h.UpdateFlight)
	r.Delete("/{flightID}", h.DeleteFlight)
}

func (h *TravelHandler) HotelRoutes(r chi.Router) {
	r.Put("/{hotelID}", h.UpdateHotel)
	r.Delete("/{hotelID}", h.DeleteHotel)
}

func (h *TravelHandler) AirportRoutes(r chi.Router) {
	r.Get("/", h.SearchAirports)
	r.Get("/{code}", h.GetAirport)
}

// --- рейсы ---

func (h *TravelHandler) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.flights.ListByBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "list flights", err)
		return
	}
	writeJSON(w, http.StatusOK, flights)
}

// POST /api/bookings/{id}/flights
// Длительность считается, если заданы оба времени
func (h *TravelHandler) AddFlight(w http.ResponseWriter, r *http.Request) {
	var f model.Flight
	if err := decodeJSON(r, &f); err != nil {
		writeBadJSON(w, err)
		return
	}
	f.BookingID = chi.URLParam(r, "id")

	created, err := h.flights.Add(r.Context(), &f)
	if err != nil {
		writeServiceError(w, h.logger, "add flight", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TravelHandler) GetFlight(w http.ResponseWriter, r *http.Request) {
	f, err := h.flights.Get(r.Context(), chi.URLParam(r, "flightID"))
	if err != nil {
		writeServiceError(w, h.logger, "get flight", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *TravelHandler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	var f model.Flight
	if err := decodeJSON(r, &f); err != nil {
		writeBadJSON(w, err)
		return
	}
	f.ID = chi.URLParam(r, "flightID")

	updated, err := h.flights.Update(r.Context(), &f)
	if err != nil {
		writeServiceError(w, h.logger, "update flight", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TravelHandler) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	if err := h.flights.Delete(r.Context(), chi.URLParam(r, "flightID")); err != nil {
		writeServiceError(w, h.logger, "delete flight", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/flight-options?within=24h
// Без within - все действующие опции, ближайшие к истечению первыми
func (h *TravelHandler) FlightOptions(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	raw := strings.TrimSpace(r.URL.Query().Get("within"))
	if raw == "" {
		entries, err := h.flights.ActiveOptions(r.Context(), now)
		if err != nil {
			writeServiceError(w, h.logger, "list flight options", err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	window, err := time.ParseDuration(raw)
	if err != nil || window <= 0 {
		writeError(w, http.StatusBadRequest, "within must be a positive duration like 24h")
		return
	}
	entries, err := h.flights.ExpiringOptions(r.Context(), now, window)
	if err != nil {
		writeServiceError(w, h.logger, "list expiring flight options", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- отели ---

func (h *TravelHandler) ListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.hotels.ListByBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "list hotels", err)
		return
	}
	writeJSON(w, http.StatusOK, hotels)
}

func (h *TravelHandler) AddHotel(w http.ResponseWriter, r *http.Request) {
	var hotel model.Hotel
	if err := decodeJSON(r, &hotel); err != nil {
		writeBadJSON(w, err)
		return
	}
	hotel.BookingID = chi.URLParam(r, "id")

	created, err := h.hotels.Add(r.Context(), &hotel)
	if err != nil {
		writeServiceError(w, h.logger, "add hotel", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TravelHandler) UpdateHotel(w http.ResponseWriter, r *http.Request) {
	var hotel model.Hotel
	if err := decodeJSON(r, &hotel); err != nil {
		writeBadJSON(w, err)
		return
	}
	hotel.ID = chi.URLParam(r, "hotelID")

	updated, err := h.hotels.Update(r.Context(), &hotel)
	if err != nil {
		writeServiceError(w, h.logger, "update hotel", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TravelHandler) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	if err := h.hotels.Delete(r.Context(), chi.URLParam(r, "hotelID")); err != nil {
		writeServiceError(w, h.logger, "delete hotel", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- путешественники ---

func (h *TravelHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.participants.ListByBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, "list participants", err)
		return
	}
	writeJSON(w, http.StatusOK, participants)
}

func (h *TravelHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var p model.Participant
	if err := decodeJSON(r, &p); err != nil {
		writeBadJSON(w, err)
		return
	}
	p.BookingID = chi.URLParam(r, "id")

	created, err := h.participants.Add(r.Context(), &p)
	if err != nil {
		writeServiceError(w, h.logger, "add participant", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TravelHandler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var p model.Participant
	if err := decodeJSON(r, &p); err != nil {
		writeBadJSON(w, err)
		return
	}
	p.ID = chi.URLParam(r, "participantID")
	p.BookingID = chi.URLParam(r, "id")

	updated, err := h.participants.Update(r.Context(), &p)
	if err != nil {
		writeServiceError(w, h.logger, "update participant", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TravelHandler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	err := h.participants.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "participantID"))
	if err != nil {
		writeServiceError(w, h.logger, "delete participant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- аэропорты ---

// GET /api/airports?q=...&limit=...
// Справочник недоступен - пустой список, не ошибка
func (h *TravelHandler) SearchAirports(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit == 0 {
		limit = defaultAirportLimit
	}

	airports := h.airports.Search(r.Context(), r.URL.Query().Get("q"))
	if uint64(len(airports)) > limit {
		airports = airports[:limit]
	}
	writeJSON(w, http.StatusOK, airports)
}

func (h *TravelHandler) GetAirport(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	a, ok := h.airports.GetByCode(r.Context(), code)
	if !ok {
		writeError(w, http.StatusNotFound, "airport "+code+" not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
