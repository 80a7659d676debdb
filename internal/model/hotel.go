package model

import "time"

type GuestType string

const (
	GuestTypeAdult GuestType = "adult"
	GuestTypeChild GuestType = "child"
	GuestTypeBaby  GuestType = "baby"
)

type HotelGuest struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Type      GuestType `json:"type"`
	Age       *int      `json:"age,omitempty"`
}

// GuestCount количество гостей по категориям
type GuestCount struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Babies   int `json:"babies"`
}

type HotelPricing struct {
	NetPrice   float64 `json:"net_price"`
	GrossPrice float64 `json:"gross_price"`
}

type Hotel struct {
	ID             string       `json:"id"`
	BookingID      string       `json:"booking_id"`
	Name           string       `json:"name"`
	Location       string       `json:"location"`
	Accommodation  string       `json:"accommodation"` // Double Room, Suite...
	MealPlan       string       `json:"meal_plan"`     // All Inclusive, Half Board...
	CheckIn        string       `json:"check_in"`
	CheckOut       string       `json:"check_out"`
	Organizer      string       `json:"organizer"`
	Guests         GuestCount   `json:"guests"`
	AssignedGuests []HotelGuest `json:"assigned_guests"`
	Pricing        HotelPricing `json:"pricing"`
	CreatedAt      time.Time    `json:"created_at"`
}
