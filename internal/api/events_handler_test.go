package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// streamRecorder ResponseRecorder, который можно читать, пока хендлер пишет
type streamRecorder struct {
	mu  sync.Mutex
	rec *httptest.ResponseRecorder
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{rec: httptest.NewRecorder()}
}

func (s *streamRecorder) Header() http.Header { return s.rec.Header() }

func (s *streamRecorder) WriteHeader(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.WriteHeader(code)
}

func (s *streamRecorder) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Write(b)
}

func (s *streamRecorder) Flush() {}

func (s *streamRecorder) Body() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Body.String()
}

func TestEventsStream(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(zap.NewNop())
	h := NewEventsHandler(hub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events?table=bookings", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Stream(rec, req)
	}()

	require.Eventually(t, func() bool { return hub.Subscribers("bookings") == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(realtime.Event{Table: "payments", Action: realtime.ActionInsert, ID: "p-1"})
	hub.Publish(realtime.Event{Table: "bookings", Action: realtime.ActionUpdate, ID: "b-1"})

	require.Eventually(t, func() bool { return strings.Contains(rec.Body(), `"id":"b-1"`) }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	body := rec.Body()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: change\n")
	assert.Contains(t, body, `"table":"bookings"`)
	assert.Contains(t, body, `"id":"b-1"`)
	assert.NotContains(t, body, `"payments"`)
	assert.Equal(t, 1, strings.Count(body, "event: change"))
	assert.Equal(t, 0, hub.Subscribers("bookings"))
}

func TestEventsStreamAllTables(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(zap.NewNop())
	h := NewEventsHandler(hub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Stream(rec, req)
	}()

	require.Eventually(t, func() bool { return hub.Subscribers(realtime.AllTables) == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(realtime.Event{Table: "notes", Action: realtime.ActionDelete, ID: "n-1"})
	require.Eventually(t, func() bool { return strings.Contains(rec.Body(), `"table":"notes"`) }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
