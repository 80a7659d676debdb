package realtime

import (
	"encoding/json"
	"fmt"
)

// Channel канал pg_notify, в который пишут триггеры таблиц
const Channel = "table_changes"

// AllTables подписка на изменения любой таблицы
const AllTables = "*"

type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event уведомление об изменении строки. Подписчики не получают саму строку,
// а перечитывают список целиком
type Event struct {
	Table     string `json:"table"`
	Action    Action `json:"action"`
	ID        string `json:"id,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
}

// DecodeEvent разбирает payload уведомления
func DecodeEvent(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, fmt.Errorf("decode change event: %w", err)
	}
	if e.Table == "" {
		return Event{}, fmt.Errorf("decode change event: table is empty")
	}
	return e, nil
}
