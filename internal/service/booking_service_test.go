package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/travel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNextBookingNumber(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		latest   string
		expected string
	}{
		{name: "first of the year", latest: "", expected: "24000001"},
		{name: "continues", latest: "24000001", expected: "24000002"},
		{name: "previous year restarts", latest: "23000917", expected: "24000001"},
		{name: "unexpected format", latest: "24-1", expected: "24000001"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, NextBookingNumber(tc.latest, now))
		})
	}
}

type bookingFixture struct {
	svc     *BookingService
	repo    *fakeBookingRepo
	details *fakeDetails
	cache   *cache.MemoryCache
}

func newBookingFixture(settings model.AgencySettings) bookingFixture {
	repo := newFakeBookingRepo()
	details := newFakeDetails()
	memory := cache.NewMemoryCache()

	store := NewSettingsStore(nil, nil, zap.NewNop())
	store.replace(settings)

	svc := NewBookingService(repo, details, store, memory, time.Minute, &fakeTx{}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC) }

	return bookingFixture{svc: svc, repo: repo, details: details, cache: memory}
}

func euSettings() model.AgencySettings {
	return model.AgencySettings{
		Country: "AT",
		Airports: []model.AgencyAirport{
			{Code: "MUC", Country: "DE", IsEU: true},
			{Code: "BCN", Country: "ES", IsEU: true},
			{Code: "VIE", Country: "AT", IsEU: true},
		},
	}
}

func TestBookingService_Create(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(euSettings())
	ctx := context.Background()

	first, err := f.svc.Create(ctx, &model.Booking{TotalAmount: 1000})
	require.NoError(t, err)
	assert.Equal(t, "24000001", first.BookingNumber)
	assert.Equal(t, model.BookingStatusDraft, first.Status)

	second, err := f.svc.Create(ctx, &model.Booking{TotalAmount: 500, Status: model.BookingStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, "24000002", second.BookingNumber)

	_, err = f.svc.Create(ctx, &model.Booking{Status: "archived"})
	assert.True(t, IsValidation(err))

	_, err = f.svc.Create(ctx, &model.Booking{TotalAmount: -1})
	assert.True(t, IsValidation(err))
}

func TestBookingService_SetStatusAnyTransition(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(euSettings())
	ctx := context.Background()

	b, err := f.svc.Create(ctx, &model.Booking{})
	require.NoError(t, err)

	for _, status := range []model.BookingStatus{
		model.BookingStatusCancelled,
		model.BookingStatusDraft,
		model.BookingStatusConfirmed,
		model.BookingStatusCancelled,
	} {
		require.NoError(t, f.svc.SetStatus(ctx, b.ID, status))
		got, err := f.svc.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	assert.True(t, IsValidation(f.svc.SetStatus(ctx, b.ID, "unknown")))
	assert.ErrorIs(t, f.svc.SetStatus(ctx, "missing", model.BookingStatusDraft), ErrNotFound)
}

func TestBookingService_Overview(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(euSettings())
	ctx := context.Background()

	b, err := f.svc.Create(ctx, &model.Booking{TotalAmount: 2000, PurchaseAmount: 1500})
	require.NoError(t, err)

	f.details.flights[b.ID] = []*model.Flight{
		{ID: "f1", BookingID: b.ID, From: model.FlightLocation{Code: "MUC"}, To: model.FlightLocation{Code: "BCN"}},
	}
	f.details.payments[b.ID] = []*model.Payment{
		{Amount: 500, Status: model.PaymentStatusCompleted},
		{Amount: 300, Status: model.PaymentStatusPending},
	}

	overview, err := f.svc.Overview(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, travel.TravelTypeEU, overview.TravelType)
	assert.InDelta(t, 500, overview.Summary.Profit, 1e-9)
	assert.InDelta(t, 25, overview.Summary.MarginPercent, 1e-9)
	assert.InDelta(t, 500, overview.Summary.TotalPaid, 1e-9)
	assert.InDelta(t, 1500, overview.Summary.Outstanding, 1e-9)
	assert.Len(t, overview.Payments, 2)

	// второй вызов берётся из кэша
	gets := f.repo.gets
	cached, err := f.svc.Overview(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, gets, f.repo.gets)
	assert.Equal(t, overview.TravelType, cached.TravelType)

	// отель делает из перелёта пакетный тур, после смены статуса кэш сброшен
	f.details.hotels[b.ID] = []*model.Hotel{{ID: "h1", BookingID: b.ID}}
	require.NoError(t, f.svc.SetStatus(ctx, b.ID, model.BookingStatusConfirmed))

	fresh, err := f.svc.Overview(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, travel.TravelTypePackageTour, fresh.TravelType)
	assert.Equal(t, model.BookingStatusConfirmed, fresh.Booking.Status)
}

func TestBookingService_OverviewFollowsSettings(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(euSettings())
	ctx := context.Background()

	b, err := f.svc.Create(ctx, &model.Booking{})
	require.NoError(t, err)
	f.details.flights[b.ID] = []*model.Flight{
		{From: model.FlightLocation{Code: "VIE"}, To: model.FlightLocation{Code: "VIE"}},
	}

	overview, err := f.svc.Overview(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, travel.TravelTypeDomestic, overview.TravelType)

	_, err = f.svc.Overview(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingService_Delete(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(euSettings())
	ctx := context.Background()

	b, err := f.svc.Create(ctx, &model.Booking{})
	require.NoError(t, err)
	_, err = f.svc.Overview(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, b.ID))

	_, ok, err := f.cache.Get(ctx, cache.BookingOverviewKey(b.ID))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, f.svc.Delete(ctx, b.ID), ErrNotFound)
}
