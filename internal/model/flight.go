package model

import "time"

// FlightLocation точка вылета или прилёта.
// Name/City/Country - отображаемые поля, заполняются из справочника аэропортов
type FlightLocation struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Time    string `json:"time"` // Местное время HH:MM
	City    string `json:"city"`
	Country string `json:"country"`
}

// FlightOption временная бронь цены у перевозчика
type FlightOption struct {
	Date       string  `json:"date"`
	Price      float64 `json:"price"`
	ExpiryDate string  `json:"expiry_date"`
}

// IsActive опция действительна только пока срок истечения в будущем
func (o *FlightOption) IsActive(now time.Time) bool {
	if o == nil || o.Date == "" || o.Price == 0 || o.ExpiryDate == "" {
		return false
	}
	expiry, err := time.ParseInLocation(DateLayout, o.ExpiryDate, now.Location())
	if err != nil {
		return false
	}
	return expiry.After(now)
}

// DateLayout формат календарных дат в таблицах рейсов и отелей
const DateLayout = "2006-01-02"

type Flight struct {
	ID               string         `json:"id"`
	BookingID        string         `json:"booking_id"`
	Date             string         `json:"date"`
	From             FlightLocation `json:"from"`
	To               FlightLocation `json:"to"`
	Carrier          string         `json:"carrier"`
	FlightNumber     string         `json:"flight_number"`
	Duration         string         `json:"duration"`
	Baggage          string         `json:"baggage"`
	ArrivalDate      string         `json:"arrival_date"`
	Organizer        string         `json:"organizer"`
	TravelReason     string         `json:"travel_reason"`
	TravelStatus     string         `json:"travel_status"`
	ProcessingStatus string         `json:"processing_status"`
	Comments         string         `json:"comments"`
	Option           *FlightOption  `json:"option,omitempty"`
	PNR              string         `json:"pnr,omitempty"`
	Price            *float64       `json:"price,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// FlightOptionEntry опция рейса для дашборда вместе с данными бронирования
type FlightOptionEntry struct {
	Flight        *Flight `json:"flight"`
	BookingID     string  `json:"booking_id"`
	BookingNumber string  `json:"booking_number"`
	CustomerName  string  `json:"customer_name"`
}
