package travel

import (
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
)

type TravelType string

const (
	TravelTypePackageTour  TravelType = "Package Tour"
	TravelTypeDomestic     TravelType = "Domestic Flight"
	TravelTypeEU           TravelType = "EU Flight"
	TravelTypeThirdCountry TravelType = "Third Country Flight"
	TravelTypeHotelOnly    TravelType = "Hotel Only"
	TravelTypeRentACar     TravelType = "Rent a Car"
	TravelTypeTransfer     TravelType = "Transfer"
	TravelTypeUnknown      TravelType = "Unknown"
)

// Leg сегмент перелёта: IATA коды вылета и прилёта
type Leg struct {
	From string
	To   string
}

// Shape минимальный снимок бронирования, нужный классификатору
type Shape struct {
	Legs         []Leg
	HotelCount   int
	HasCarRental bool
	HasTransfer  bool
}

// ShapeOf строит снимок из бронирования с подгруженными рейсами и отелями
func ShapeOf(b *model.Booking) Shape {
	if b == nil {
		return Shape{}
	}
	shape := Shape{
		HotelCount:   len(b.Hotels),
		HasCarRental: b.CarRental != nil,
		HasTransfer:  b.Transfer != nil,
	}
	for _, f := range b.Flights {
		shape.Legs = append(shape.Legs, Leg{From: f.From.Code, To: f.To.Code})
	}
	return shape
}

// AirportInfo страна аэропорта и членство в ЕС из настроек агентства
type AirportInfo struct {
	Country string
	IsEU    bool
}

// AirportTable таблица аэропорт -> страна/ЕС, ключ - IATA код в верхнем регистре
type AirportTable map[string]AirportInfo

// NewAirportTable строит таблицу из настроек агентства
func NewAirportTable(airports []model.AgencyAirport) AirportTable {
	table := make(AirportTable, len(airports))
	for _, a := range airports {
		table[normalizeCode(a.Code)] = AirportInfo{Country: a.Country, IsEU: a.IsEU}
	}
	return table
}

func (t AirportTable) isEU(code string) bool {
	info, ok := t[normalizeCode(code)]
	return ok && info.IsEU
}

func (t AirportTable) isDomestic(code, homeCountry string) bool {
	if homeCountry == "" {
		return false
	}
	info, ok := t[normalizeCode(code)]
	return ok && strings.EqualFold(info.Country, homeCountry)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Classify определяет тип поездки. Правила проверяются по порядку, побеждает первое.
// При нескольких сегментах смотрим только на первый.
func Classify(shape Shape, airports AirportTable, homeCountry string) TravelType {
	hasFlights := len(shape.Legs) > 0
	hasHotels := shape.HotelCount > 0

	if hasFlights {
		if hasHotels {
			return TravelTypePackageTour
		}

		leg := shape.Legs[0]
		if airports.isDomestic(leg.From, homeCountry) && airports.isDomestic(leg.To, homeCountry) {
			return TravelTypeDomestic
		}

		fromEU := airports.isEU(leg.From)
		toEU := airports.isEU(leg.To)
		switch {
		case fromEU && toEU:
			return TravelTypeEU
		case fromEU != toEU:
			return TravelTypeThirdCountry
		}
	}

	switch {
	case hasHotels && !hasFlights:
		return TravelTypeHotelOnly
	case shape.HasCarRental && !hasFlights && !hasHotels:
		return TravelTypeRentACar
	case shape.HasTransfer && !hasFlights && !hasHotels:
		return TravelTypeTransfer
	}

	return TravelTypeUnknown
}

// ClassifyBooking классифицирует бронирование по настройкам агентства
func ClassifyBooking(b *model.Booking, settings model.AgencySettings) TravelType {
	return Classify(ShapeOf(b), NewAirportTable(settings.Airports), settings.Country)
}
