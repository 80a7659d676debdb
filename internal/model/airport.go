package model

// AirportType тип аэропорта из справочника OurAirports
type AirportType string

const (
	AirportTypeLarge  AirportType = "large_airport"
	AirportTypeMedium AirportType = "medium_airport"
)

// Airport справочная запись аэропорта. Загружается один раз и не изменяется.
type Airport struct {
	ID               string      `json:"id"`
	Ident            string      `json:"ident"`
	Type             AirportType `json:"type"`
	Name             string      `json:"name"`
	Continent        string      `json:"continent"`
	Country          string      `json:"country"`
	Region           string      `json:"region"`
	Municipality     string      `json:"municipality"`
	ScheduledService bool        `json:"scheduled_service"`
	GPSCode          string      `json:"gps_code"`
	IATACode         string      `json:"iata_code"`
	LocalCode        string      `json:"local_code"`
	Keywords         []string    `json:"keywords,omitempty"`
}
