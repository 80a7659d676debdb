package state

import "time"

// ChatState представляет текущее состояние диалога в чате
type ChatState string

const (
	StateNone ChatState = "" // Нет активного состояния

	// Команда вызвана без аргумента, ждём текст следующим сообщением
	StateAwaitingNote    ChatState = "awaiting_note"
	StateAwaitingAirport ChatState = "awaiting_airport"
	StateAwaitingBooking ChatState = "awaiting_booking"
	StateAwaitingRoute   ChatState = "awaiting_itinerary"
)

// ChatData хранит состояние диалога и момент его начала
type ChatData struct {
	State     ChatState
	StartedAt time.Time
}
