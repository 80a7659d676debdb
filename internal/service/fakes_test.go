package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository"
)

// fakeTx выполняет функцию без транзакции, считает вызовы и помечает контекст
type fakeTx struct {
	calls int
}

type fakeTxKey struct{}

func (t *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(context.WithValue(ctx, fakeTxKey{}, true))
}

func inFakeTx(ctx context.Context) bool {
	v, _ := ctx.Value(fakeTxKey{}).(bool)
	return v
}

type fakeIDs struct {
	mu   sync.Mutex
	next int
}

func (f *fakeIDs) id(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return fmt.Sprintf("%s-%d", prefix, f.next)
}

// --- customers ---

type fakeCustomerRepo struct {
	fakeIDs
	customers map[string]*model.Customer
	latest    string
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[string]*model.Customer)}
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	c.ID = r.id("customer")
	r.customers[c.ID] = c
	r.latest = c.CustomerNumber
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*model.Customer, error) {
	return r.customers[id], nil
}

func (r *fakeCustomerRepo) Search(_ context.Context, _ string, _ uint64) ([]*model.Customer, error) {
	out := make([]*model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCustomerRepo) LatestNumber(context.Context) (string, error) {
	return r.latest, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, id string, p model.CustomerPatch) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	return c, nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := r.customers[id]
	delete(r.customers, id)
	return ok, nil
}

// --- bookings ---

type fakeBookingRepo struct {
	fakeIDs
	bookings map[string]*model.Booking
	latest   string
	gets     int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *model.Booking) error {
	b.ID = r.id("booking")
	b.CreatedAt = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	cp := *b
	r.bookings[b.ID] = &cp
	r.latest = b.BookingNumber
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	r.gets++
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) List(_ context.Context, f repository.BookingFilter) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range r.bookings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingNumber < out[j].BookingNumber })
	return out, nil
}

func (r *fakeBookingRepo) ListByCustomer(_ context.Context, customerID string) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) LatestNumber(_ context.Context, prefix string) (string, error) {
	if len(r.latest) >= len(prefix) && r.latest[:len(prefix)] == prefix {
		return r.latest, nil
	}
	return "", nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *model.Booking) (bool, error) {
	if _, ok := r.bookings[b.ID]; !ok {
		return false, nil
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return true, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id string, status model.BookingStatus) (bool, error) {
	b, ok := r.bookings[id]
	if !ok {
		return false, nil
	}
	b.Status = status
	return true, nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := r.bookings[id]
	delete(r.bookings, id)
	return ok, nil
}

// fakeDetails составные части бронирования по booking_id
type fakeDetails struct {
	flights  map[string][]*model.Flight
	hotels   map[string][]*model.Hotel
	payments map[string][]*model.Payment
}

func newFakeDetails() *fakeDetails {
	return &fakeDetails{
		flights:  make(map[string][]*model.Flight),
		hotels:   make(map[string][]*model.Hotel),
		payments: make(map[string][]*model.Payment),
	}
}

func (d *fakeDetails) Flights(_ context.Context, id string) ([]*model.Flight, error) {
	return d.flights[id], nil
}

func (d *fakeDetails) Hotels(_ context.Context, id string) ([]*model.Hotel, error) {
	return d.hotels[id], nil
}

func (d *fakeDetails) Participants(context.Context, string) ([]*model.Participant, error) {
	return nil, nil
}

func (d *fakeDetails) Payments(_ context.Context, id string) ([]*model.Payment, error) {
	return d.payments[id], nil
}

func (d *fakeDetails) ListByBooking(ctx context.Context, id string) ([]*model.Payment, error) {
	return d.Payments(ctx, id)
}

// --- flights ---

type fakeFlightRepo struct {
	fakeIDs
	flights map[string]*model.Flight
	options []*model.FlightOptionEntry
	listed  int
}

func newFakeFlightRepo() *fakeFlightRepo {
	return &fakeFlightRepo{flights: make(map[string]*model.Flight)}
}

func (r *fakeFlightRepo) Create(_ context.Context, f *model.Flight) error {
	f.ID = r.id("flight")
	cp := *f
	r.flights[f.ID] = &cp
	return nil
}

func (r *fakeFlightRepo) GetByID(_ context.Context, id string) (*model.Flight, error) {
	f, ok := r.flights[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFlightRepo) ListByBooking(_ context.Context, bookingID string) ([]*model.Flight, error) {
	var out []*model.Flight
	for _, f := range r.flights {
		if f.BookingID == bookingID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeFlightRepo) ListWithOptions(context.Context) ([]*model.FlightOptionEntry, error) {
	r.listed++
	return r.options, nil
}

func (r *fakeFlightRepo) Update(_ context.Context, f *model.Flight) (bool, error) {
	if _, ok := r.flights[f.ID]; !ok {
		return false, nil
	}
	cp := *f
	r.flights[f.ID] = &cp
	return true, nil
}

func (r *fakeFlightRepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := r.flights[id]
	delete(r.flights, id)
	return ok, nil
}

// fakeAirports справочник из фиксированного набора
type fakeAirports map[string]model.Airport

func (a fakeAirports) GetByCode(_ context.Context, code string) (*model.Airport, bool) {
	airport, ok := a[code]
	if !ok {
		return nil, false
	}
	return &airport, true
}

// --- installments ---

type fakeInstallmentRepo struct {
	plan *model.InstallmentPlan
	// locks фиксирует для каждого LockPlan, был ли он внутри транзакции
	locks []bool
}

func (r *fakeInstallmentRepo) LockPlan(ctx context.Context, bookingID string) (*model.InstallmentPlan, error) {
	r.locks = append(r.locks, inFakeTx(ctx))
	return r.GetPlan(ctx, bookingID)
}

func (r *fakeInstallmentRepo) GetPlan(_ context.Context, bookingID string) (*model.InstallmentPlan, error) {
	if r.plan == nil || r.plan.BookingID != bookingID {
		return nil, nil
	}
	return clonePlan(r.plan), nil
}

func (r *fakeInstallmentRepo) UpsertPlan(_ context.Context, plan *model.InstallmentPlan) error {
	if r.plan == nil {
		plan.ID = "plan-1"
		r.plan = clonePlan(plan)
		return nil
	}
	plan.ID = r.plan.ID
	r.plan.TotalAmount = plan.TotalAmount
	r.plan.StartDate = plan.StartDate
	r.plan.Notes = plan.Notes
	return nil
}

func (r *fakeInstallmentRepo) InsertPayer(_ context.Context, _ string, payer *model.InstallmentPayer) error {
	cp := *payer
	cp.Payments = []model.InstallmentPayment{}
	r.plan.Payers = append(r.plan.Payers, &cp)
	return nil
}

func (r *fakeInstallmentRepo) UpdatePayer(_ context.Context, payer *model.InstallmentPayer) (bool, error) {
	p := r.payer(payer.ID)
	if p == nil {
		return false, nil
	}
	p.Name = payer.Name
	p.TotalAmount = payer.TotalAmount
	return true, nil
}

func (r *fakeInstallmentRepo) DeletePayer(_ context.Context, payerID string) (bool, error) {
	for i, p := range r.plan.Payers {
		if p.ID == payerID {
			r.plan.Payers = append(r.plan.Payers[:i], r.plan.Payers[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInstallmentRepo) InsertPayment(_ context.Context, payerID string, p model.InstallmentPayment) error {
	payer := r.payer(payerID)
	payer.Payments = append(payer.Payments, p)
	return nil
}

func (r *fakeInstallmentRepo) UpdatePayment(_ context.Context, p model.InstallmentPayment) (bool, error) {
	for _, payer := range r.plan.Payers {
		for i := range payer.Payments {
			if payer.Payments[i].ID == p.ID {
				payer.Payments[i] = p
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeInstallmentRepo) DeletePayment(_ context.Context, paymentID string) (bool, error) {
	for _, payer := range r.plan.Payers {
		for i := range payer.Payments {
			if payer.Payments[i].ID == paymentID {
				payer.Payments = append(payer.Payments[:i], payer.Payments[i+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

// SyncPaidAmount как в базе: сумма по строкам платежей
func (r *fakeInstallmentRepo) SyncPaidAmount(_ context.Context, payerID string) (float64, error) {
	payer := r.payer(payerID)
	var sum float64
	for _, p := range payer.Payments {
		sum += p.Amount
	}
	payer.PaidAmount = sum
	return sum, nil
}

func (r *fakeInstallmentRepo) payer(id string) *model.InstallmentPayer {
	for _, p := range r.plan.Payers {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func clonePlan(plan *model.InstallmentPlan) *model.InstallmentPlan {
	cp := *plan
	cp.Payers = make([]*model.InstallmentPayer, 0, len(plan.Payers))
	for _, p := range plan.Payers {
		payer := *p
		payer.Payments = append([]model.InstallmentPayment{}, p.Payments...)
		cp.Payers = append(cp.Payers, &payer)
	}
	return &cp
}

// --- payments and cancellations ---

type fakePaymentRepo struct {
	fakeIDs
	payments []*model.Payment
}

func (r *fakePaymentRepo) Create(_ context.Context, p *model.Payment) error {
	p.ID = r.id("payment")
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakePaymentRepo) ListByBooking(_ context.Context, bookingID string) ([]*model.Payment, error) {
	var out []*model.Payment
	for _, p := range r.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, id string, status model.PaymentStatus) (bool, error) {
	for _, p := range r.payments {
		if p.ID == id {
			p.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) Delete(_ context.Context, id string) (bool, error) {
	for i, p := range r.payments {
		if p.ID == id {
			r.payments = append(r.payments[:i], r.payments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeCancellationRepo struct {
	fakeIDs
	items map[string]*model.CancellationPolicy
}

func newFakeCancellationRepo() *fakeCancellationRepo {
	return &fakeCancellationRepo{items: make(map[string]*model.CancellationPolicy)}
}

func (r *fakeCancellationRepo) Create(_ context.Context, c *model.CancellationPolicy) error {
	c.ID = r.id("cancellation")
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeCancellationRepo) GetByID(_ context.Context, id string) (*model.CancellationPolicy, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCancellationRepo) GetLatestByBooking(_ context.Context, bookingID string) (*model.CancellationPolicy, error) {
	for _, c := range r.items {
		if c.BookingID == bookingID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCancellationRepo) Update(_ context.Context, c *model.CancellationPolicy) (bool, error) {
	if _, ok := r.items[c.ID]; !ok {
		return false, nil
	}
	cp := *c
	r.items[c.ID] = &cp
	return true, nil
}

func (r *fakeCancellationRepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := r.items[id]
	delete(r.items, id)
	return ok, nil
}

// --- settings ---

type fakeSettingsRepo struct {
	stored *model.AgencySettings
	saves  int
	err    error
}

func (r *fakeSettingsRepo) Get(context.Context) (*model.AgencySettings, error) {
	return r.stored, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, s model.AgencySettings) error {
	if r.err != nil {
		return r.err
	}
	r.saves++
	cp := s.Clone()
	r.stored = &cp
	return nil
}
