package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/realtime"
	"go.uber.org/zap"
)

const (
	eventsBuffer      = 64
	heartbeatInterval = 25 * time.Second
)

// ChangeFeed источник событий изменения таблиц
type ChangeFeed interface {
	Subscribe(table string, fn realtime.Handler) func()
}

// EventsHandler Server-Sent Events поток изменений. Клиент на каждое событие
// перечитывает список целиком, поэтому при переполнении буфера события
// можно терять: следующее всё равно вызовет перечитывание
type EventsHandler struct {
	feed      ChangeFeed
	logger    *zap.Logger
	heartbeat time.Duration
}

func NewEventsHandler(feed ChangeFeed, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{feed: feed, logger: logger, heartbeat: heartbeatInterval}
}

// GET /api/events?table=bookings
// Без table - изменения всех таблиц
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	table := strings.TrimSpace(r.URL.Query().Get("table"))
	if table == "" {
		table = realtime.AllTables
	}

	events := make(chan realtime.Event, eventsBuffer)
	unsubscribe := h.feed.Subscribe(table, func(e realtime.Event) {
		select {
		case events <- e:
		default:
			h.logger.Debug("SSE client is slow, change event dropped", zap.String("table", e.Table))
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "retry: 3000\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case e := <-events:
			data, err := json.Marshal(e)
			if err != nil {
				h.logger.Warn("Failed to encode change event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
