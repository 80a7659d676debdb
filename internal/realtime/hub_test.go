package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	e, err := DecodeEvent(`{"table":"booking_payments","action":"insert","id":"p1","booking_id":"b1"}`)
	require.NoError(t, err)
	assert.Equal(t, Event{Table: "booking_payments", Action: ActionInsert, ID: "p1", BookingID: "b1"}, e)

	_, err = DecodeEvent(`{"action":"insert"}`)
	assert.Error(t, err)

	_, err = DecodeEvent(`not json`)
	assert.Error(t, err)
}

func TestHubRoutesByTable(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)

	var bookings, all []Event
	unsubBookings := hub.Subscribe("bookings", func(e Event) { bookings = append(bookings, e) })
	hub.Subscribe(AllTables, func(e Event) { all = append(all, e) })

	hub.Publish(Event{Table: "bookings", Action: ActionUpdate, ID: "b1"})
	hub.Publish(Event{Table: "notes", Action: ActionInsert, ID: "n1"})

	assert.Len(t, bookings, 1)
	assert.Len(t, all, 2)

	unsubBookings()
	unsubBookings()
	assert.Zero(t, hub.Subscribers("bookings"))

	hub.Publish(Event{Table: "bookings", Action: ActionDelete, ID: "b1"})
	assert.Len(t, bookings, 1)
	assert.Len(t, all, 3)
}

func TestHubRecoversFromPanickingSubscriber(t *testing.T) {
	t.Parallel()

	hub := NewHub(zap.NewNop())
	delivered := 0
	hub.Subscribe("notes", func(Event) { panic("boom") })
	hub.Subscribe("notes", func(Event) { delivered++ })

	assert.NotPanics(t, func() {
		hub.Publish(Event{Table: "notes", Action: ActionInsert})
	})
	assert.Equal(t, 1, delivered)
}

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	written  chan struct{}
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer func() { w.written <- struct{}{} }()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaForwarder(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{written: make(chan struct{}, 4)}
	f := NewKafkaForwarder(w, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = f.Run(ctx)
		close(done)
	}()

	f.Enqueue(Event{Table: "booking_payments", Action: ActionInsert, ID: "p1", BookingID: "b1"})
	f.Enqueue(Event{Table: "notes", Action: ActionDelete, ID: "n1"})

	for i := 0; i < 2; i++ {
		select {
		case <-w.written:
		case <-time.After(2 * time.Second):
			t.Fatal("event was not forwarded")
		}
	}
	cancel()
	<-done

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.messages, 2)
	assert.Equal(t, "b1", string(w.messages[0].Key))
	assert.JSONEq(t, `{"table":"booking_payments","action":"insert","id":"p1","booking_id":"b1"}`, string(w.messages[0].Value))
	assert.Equal(t, "notes", string(w.messages[1].Key))
}

func TestKafkaForwarderDropsWhenFull(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{written: make(chan struct{}, 1), err: errors.New("unused")}
	f := NewKafkaForwarder(w, 1, zap.NewNop())

	f.Enqueue(Event{Table: "notes"})
	assert.NotPanics(t, func() { f.Enqueue(Event{Table: "notes"}) })
	assert.Len(t, f.events, 1)
}

func TestCacheInvalidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hub := NewHub(nil)
	c := cache.NewMemoryCache()
	SubscribeCacheInvalidation(hub, c, zap.NewNop())

	require.NoError(t, c.Set(ctx, cache.BookingOverviewKey("b1"), []byte("{}"), time.Minute))
	require.NoError(t, c.Set(ctx, cache.BookingOverviewKey("b2"), []byte("{}"), time.Minute))
	require.NoError(t, c.Set(ctx, cache.FlightOptionsKey(), []byte("[]"), time.Minute))

	hub.Publish(Event{Table: "booking_payments", Action: ActionInsert, BookingID: "b1"})

	_, ok, _ := c.Get(ctx, cache.BookingOverviewKey("b1"))
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, cache.BookingOverviewKey("b2"))
	assert.True(t, ok)
	_, ok, _ = c.Get(ctx, cache.FlightOptionsKey())
	assert.True(t, ok)

	hub.Publish(Event{Table: "booking_flights", Action: ActionUpdate, BookingID: "b2"})
	_, ok, _ = c.Get(ctx, cache.BookingOverviewKey("b2"))
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, cache.FlightOptionsKey())
	assert.False(t, ok)
}
