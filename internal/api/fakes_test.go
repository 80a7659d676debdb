package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/finance"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/realtime"
	"github.com/Freeeeeet/agency_backoffice/internal/repository"
	"github.com/Freeeeeet/agency_backoffice/internal/service"
	"go.uber.org/zap"
)

// Фейки встраивают интерфейс: невызываемые методы не реализуются

type fakeCustomers struct {
	CustomerService
	created   *model.Customer
	lastQuery string
	lastLimit uint64
	err       error
}

func (f *fakeCustomers) Create(_ context.Context, c *model.Customer) (*model.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c.ID = "cust-1"
	c.CustomerNumber = "C26100001"
	f.created = c
	return c, nil
}

func (f *fakeCustomers) Get(_ context.Context, id string) (*model.Customer, error) {
	if f.created != nil && f.created.ID == id {
		return f.created, nil
	}
	return nil, fmt.Errorf("customer %s: %w", id, service.ErrNotFound)
}

func (f *fakeCustomers) Search(_ context.Context, query string, limit uint64) ([]*model.Customer, error) {
	f.lastQuery = query
	f.lastLimit = limit
	return []*model.Customer{}, nil
}

type fakeBookings struct {
	BookingService
	filter     repository.BookingFilter
	statusID   string
	status     model.BookingStatus
	overview   *service.Overview
	byCustomer map[string][]*model.Booking
}

func (f *fakeBookings) List(_ context.Context, filter repository.BookingFilter) ([]*model.Booking, error) {
	f.filter = filter
	return []*model.Booking{{ID: "b-1", BookingNumber: "26000001"}}, nil
}

func (f *fakeBookings) ListByCustomer(_ context.Context, customerID string) ([]*model.Booking, error) {
	return f.byCustomer[customerID], nil
}

func (f *fakeBookings) SetStatus(_ context.Context, id string, status model.BookingStatus) error {
	if !status.Valid() {
		return &service.ValidationError{Action: "set booking status", Reason: "unknown status", Fields: []string{"status"}}
	}
	f.statusID = id
	f.status = status
	return nil
}

func (f *fakeBookings) Overview(_ context.Context, id string) (*service.Overview, error) {
	if f.overview == nil || f.overview.Booking.ID != id {
		return nil, fmt.Errorf("booking %s: %w", id, service.ErrNotFound)
	}
	return f.overview, nil
}

type fakeExporter struct {
	filter repository.BookingFilter
}

func (f *fakeExporter) ExportBookings(_ context.Context, w io.Writer, filter repository.BookingFilter) (int, error) {
	f.filter = filter
	_, err := io.WriteString(w, "xlsx-bytes")
	return 1, err
}

type fakeFlights struct {
	FlightService
	added  *model.Flight
	window time.Duration
}

func (f *fakeFlights) Add(_ context.Context, flight *model.Flight) (*model.Flight, error) {
	flight.ID = "fl-1"
	f.added = flight
	return flight, nil
}

func (f *fakeFlights) ActiveOptions(context.Context, time.Time) ([]*model.FlightOptionEntry, error) {
	return []*model.FlightOptionEntry{{BookingID: "b-1"}, {BookingID: "b-2"}}, nil
}

func (f *fakeFlights) ExpiringOptions(_ context.Context, _ time.Time, window time.Duration) ([]*model.FlightOptionEntry, error) {
	f.window = window
	return []*model.FlightOptionEntry{{BookingID: "b-1"}}, nil
}

type fakeAirports struct{}

func (fakeAirports) Search(_ context.Context, query string) []model.Airport {
	if query == "" {
		return []model.Airport{}
	}
	return []model.Airport{{IATACode: "VIE"}, {IATACode: "SZG"}, {IATACode: "GRZ"}}
}

func (fakeAirports) GetByCode(_ context.Context, code string) (*model.Airport, bool) {
	if code == "VIE" {
		return &model.Airport{IATACode: "VIE", Name: "Vienna International Airport"}, true
	}
	return nil, false
}

type fakePayments struct {
	PaymentService
	recorded *model.Payment
	draft    finance.CancellationDraft
}

func (f *fakePayments) Record(_ context.Context, p *model.Payment) (*model.Payment, error) {
	if p.Amount <= 0 {
		return nil, &service.ValidationError{Action: "record payment", Reason: "amount must be positive", Fields: []string{"amount"}}
	}
	p.ID = "pay-1"
	f.recorded = p
	return p, nil
}

func (f *fakePayments) CancellationDraft(context.Context, string) (*finance.CancellationDraft, error) {
	d := f.draft
	return &d, nil
}

type fakeChat struct {
	ChatService
	creator string
	members []string
}

func (f *fakeChat) Start(_ context.Context, creatorID string, employeeIDs ...string) (*model.Conversation, error) {
	f.creator = creatorID
	f.members = employeeIDs
	return &model.Conversation{ID: "conv-1"}, nil
}

type fakeSettings struct {
	settings model.AgencySettings
}

func (f *fakeSettings) Snapshot() model.AgencySettings { return f.settings }

func (f *fakeSettings) Update(_ context.Context, patch model.AgencySettingsPatch) (model.AgencySettings, error) {
	if patch.Country != nil {
		f.settings.Country = *patch.Country
	}
	return f.settings, nil
}

type fakeMaintenance struct {
	calls int
}

func (f *fakeMaintenance) Reset(context.Context) (map[string]int64, error) {
	f.calls++
	return map[string]int64{"bookings": 3}, nil
}

type testDeps struct {
	customers   *fakeCustomers
	bookings    *fakeBookings
	exporter    *fakeExporter
	flights     *fakeFlights
	payments    *fakePayments
	chat        *fakeChat
	settings    *fakeSettings
	maintenance *fakeMaintenance
	hub         *realtime.Hub
	cache       *cache.MemoryCache
}

func newTestDeps() *testDeps {
	return &testDeps{
		customers:   &fakeCustomers{},
		bookings:    &fakeBookings{byCustomer: map[string][]*model.Booking{}},
		exporter:    &fakeExporter{},
		flights:     &fakeFlights{},
		payments:    &fakePayments{},
		chat:        &fakeChat{},
		settings:    &fakeSettings{settings: model.AgencySettings{Country: "AT"}},
		maintenance: &fakeMaintenance{},
		hub:         realtime.NewHub(zap.NewNop()),
		cache:       cache.NewMemoryCache(),
	}
}

func (d *testDeps) router() http.Handler {
	logger := zap.NewNop()
	bookings := NewBookingHandler(d.bookings, d.exporter, logger)
	bookings.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

	return NewRouter(&Handlers{
		Customers: NewCustomerHandler(d.customers, d.bookings, logger),
		Bookings:  bookings,
		Travel:    NewTravelHandler(d.flights, nil, nil, fakeAirports{}, logger),
		Payments:  NewPaymentHandler(d.payments, logger),
		Office:    NewOfficeHandler(nil, d.chat, d.settings, d.maintenance, logger),
		Events:    NewEventsHandler(d.hub, logger),
	}, Options{
		Cache:       d.cache,
		CORSOrigins: []string{"*"},
		Logger:      logger,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...[2]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, kv := range headers {
		req.Header.Set(kv[0], kv[1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
