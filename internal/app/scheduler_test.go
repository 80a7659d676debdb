package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOptions struct {
	entries []*model.FlightOptionEntry
	window  time.Duration
}

func (s *stubOptions) ExpiringOptions(_ context.Context, _ time.Time, window time.Duration) ([]*model.FlightOptionEntry, error) {
	s.window = window
	return s.entries, nil
}

type stubNotifier struct {
	batches [][]*model.FlightOptionEntry
	err     error
}

func (n *stubNotifier) NotifyExpiringOptions(_ context.Context, entries []*model.FlightOptionEntry) error {
	if n.err != nil {
		return n.err
	}
	n.batches = append(n.batches, entries)
	return nil
}

func optionEntry(flightID, expiry string) *model.FlightOptionEntry {
	return &model.FlightOptionEntry{
		BookingID:     "b-1",
		BookingNumber: "26000001",
		Flight: &model.Flight{
			ID:     flightID,
			From:   model.FlightLocation{Code: "VIE"},
			To:     model.FlightLocation{Code: "LHR"},
			Option: &model.FlightOption{Date: "2026-10-15", Price: 420, ExpiryDate: expiry},
		},
	}
}

func newTestScheduler(options OptionSource, notifier Notifier) *Scheduler {
	s := NewScheduler(options, notifier, cache.NewMemoryCache(), time.Hour, 24*time.Hour, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestSweepOptionsAlertsOnce(t *testing.T) {
	t.Parallel()

	options := &stubOptions{entries: []*model.FlightOptionEntry{
		optionEntry("fl-1", "2026-10-20"),
		optionEntry("fl-2", "2026-10-20"),
	}}
	notifier := &stubNotifier{}
	s := newTestScheduler(options, notifier)

	assert.Equal(t, 2, s.SweepOptions(context.Background()))
	assert.Equal(t, 24*time.Hour, options.window)

	// Повторный проход без новых опций ничего не шлёт
	assert.Equal(t, 0, s.SweepOptions(context.Background()))

	// Перенос срока - это новая опция
	options.entries = append(options.entries, optionEntry("fl-1", "2026-10-21"))
	assert.Equal(t, 1, s.SweepOptions(context.Background()))

	require.Len(t, notifier.batches, 2)
	assert.Len(t, notifier.batches[0], 2)
	assert.Equal(t, "2026-10-21", notifier.batches[1][0].Flight.Option.ExpiryDate)
}

func TestSweepOptionsRetriesAfterFailedDelivery(t *testing.T) {
	t.Parallel()

	options := &stubOptions{entries: []*model.FlightOptionEntry{optionEntry("fl-1", "2026-10-20")}}
	notifier := &stubNotifier{err: errors.New("telegram is down")}
	s := newTestScheduler(options, notifier)

	assert.Equal(t, 0, s.SweepOptions(context.Background()))

	notifier.err = nil
	assert.Equal(t, 1, s.SweepOptions(context.Background()))
	require.Len(t, notifier.batches, 1)
}

func TestSchedulerStops(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(&stubOptions{}, &stubNotifier{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(context.Background())
	}()

	s.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
