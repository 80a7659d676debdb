package formatting

import (
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/travel"
)

// BookingStatusDisplay представляет отображение статуса бронирования
type BookingStatusDisplay struct {
	Emoji string
	Text  string
}

// GetBookingStatusDisplay возвращает emoji и текст для статуса бронирования
func GetBookingStatusDisplay(status model.BookingStatus) BookingStatusDisplay {
	displays := map[model.BookingStatus]BookingStatusDisplay{
		model.BookingStatusDraft:     {"📝", "Черновик"},
		model.BookingStatusConfirmed: {"✅", "Подтверждено"},
		model.BookingStatusCancelled: {"❌", "Отменено"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return BookingStatusDisplay{"❓", "Неизвестно"}
}

// TravelTypeEmoji иконка типа поездки
func TravelTypeEmoji(t travel.TravelType) string {
	switch t {
	case travel.TravelTypePackageTour:
		return "🏝"
	case travel.TravelTypeDomestic, travel.TravelTypeEU, travel.TravelTypeThirdCountry:
		return "✈️"
	case travel.TravelTypeHotelOnly:
		return "🏨"
	case travel.TravelTypeRentACar:
		return "🚗"
	case travel.TravelTypeTransfer:
		return "🚐"
	}
	return "❔"
}
