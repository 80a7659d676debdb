package realtime

import (
	"sync"

	"go.uber.org/zap"
)

type Handler func(Event)

// Hub раздаёт события подписчикам по имени таблицы.
// Обработчики вызываются синхронно в горутине слушателя и не должны блокироваться
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]Handler
	nextID uint64
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[string]map[uint64]Handler),
		logger: logger,
	}
}

// Subscribe подписывает fn на таблицу (или AllTables). Возвращает функцию отписки
func (h *Hub) Subscribe(table string, fn Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.subs[table] == nil {
		h.subs[table] = make(map[uint64]Handler)
	}
	h.subs[table][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[table], id)
			if len(h.subs[table]) == 0 {
				delete(h.subs, table)
			}
		})
	}
}

// Publish доставляет событие подписчикам таблицы и подписчикам AllTables
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.subs[e.Table])+len(h.subs[AllTables]))
	for _, fn := range h.subs[e.Table] {
		handlers = append(handlers, fn)
	}
	for _, fn := range h.subs[AllTables] {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		h.deliver(fn, e)
	}
}

// Subscribers количество подписок на таблицу
func (h *Hub) Subscribers(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}

func (h *Hub) deliver(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Change subscriber panicked",
				zap.String("table", e.Table),
				zap.Any("panic", r),
			)
		}
	}()
	fn(e)
}
