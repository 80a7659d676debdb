package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	idempotencyLockTTL   = 30 * time.Second
	idempotencyResultTTL = 24 * time.Hour
)

// Handlers все группы хендлеров API
type Handlers struct {
	Customers *CustomerHandler
	Bookings  *BookingHandler
	Travel    *TravelHandler
	Payments  *PaymentHandler
	Office    *OfficeHandler
	Events    *EventsHandler
}

// Options инфраструктура роутера. Health проверяет базу для /health
type Options struct {
	Cache       cache.Cache
	CORSOrigins []string
	Health      func(ctx context.Context) error
	Logger      *zap.Logger
}

func NewRouter(h *Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(metrics.HTTPMiddleware)

	r.Get("/health", health(opts.Health))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(Idempotency(opts.Cache, idempotencyLockTTL, idempotencyResultTTL, opts.Logger))

		r.Route("/customers", h.Customers.Routes)
		r.Route("/bookings", func(r chi.Router) {
			h.Bookings.Routes(r)
			h.Travel.BookingRoutes(r)
			h.Payments.BookingRoutes(r)
		})
		r.Route("/flights", h.Travel.FlightRoutes)
		r.Get("/flight-options", h.Travel.FlightOptions)
		r.Route("/hotels", h.Travel.HotelRoutes)
		r.Route("/airports", h.Travel.AirportRoutes)
		r.Route("/cancellations", h.Payments.CancellationRoutes)

		r.Route("/notes", h.Office.NoteRoutes)
		r.Route("/quick-notes", h.Office.QuickNoteRoutes)
		r.Route("/chat", h.Office.ChatRoutes)
		r.Route("/settings", h.Office.SettingsRoutes)
		r.Post("/admin/reset", h.Office.ResetDatabase)

		r.Get("/events", h.Events.Stream)
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", IdempotencyHeader, EmployeeHeader},
		ExposedHeaders: []string{IdempotencyHitHeader, "Content-Disposition"},
	})

	return corsHandler.Handler(r)
}

func health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				writeError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
