package model

import "time"

type BookingStatus string

const (
	BookingStatusDraft     BookingStatus = "draft"     // Черновик, ещё не подтверждено клиентом
	BookingStatusConfirmed BookingStatus = "confirmed" // Подтверждено
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено
)

// Valid проверяет что статус известен. Переходы между статусами не ограничены.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusDraft, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// CarRental аренда автомобиля в составе бронирования
type CarRental struct {
	Company      string `json:"company"`
	PickupPlace  string `json:"pickup_place"`
	PickupDate   string `json:"pickup_date"`
	DropoffPlace string `json:"dropoff_place"`
	DropoffDate  string `json:"dropoff_date"`
	CarClass     string `json:"car_class"`
}

// Transfer трансфер (аэропорт - отель и т.п.)
type Transfer struct {
	From string `json:"from"`
	To   string `json:"to"`
	Date string `json:"date"`
	Time string `json:"time"`
	Type string `json:"type"`
}

type Booking struct {
	ID             string        `json:"id"`
	BookingNumber  string        `json:"booking_number"`
	CustomerID     string        `json:"customer_id"`
	Status         BookingStatus `json:"status"`
	TotalAmount    float64       `json:"total_amount"`    // Продажа клиенту
	PurchaseAmount float64       `json:"purchase_amount"` // Закупка у поставщиков
	CarRental      *CarRental    `json:"car_rental,omitempty"`
	Transfer       *Transfer     `json:"transfer,omitempty"`
	Notes          string        `json:"notes"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Дополнительные поля для удобства (не из таблицы bookings)
	Customer     *Customer      `json:"customer,omitempty"`
	Flights      []*Flight      `json:"flights,omitempty"`
	Hotels       []*Hotel       `json:"hotels,omitempty"`
	Participants []*Participant `json:"participants,omitempty"`
}

// Participant путешественник в бронировании
type Participant struct {
	ID             string    `json:"id"`
	BookingID      string    `json:"booking_id"`
	Salutation     string    `json:"salutation"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	DateOfBirth    string    `json:"date_of_birth,omitempty"`
	TicketNumber   string    `json:"ticket_number,omitempty"`
	PassportNumber string    `json:"passport_number,omitempty"`
	PassportExpiry string    `json:"passport_expiry,omitempty"`
	Comments       string    `json:"comments,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FullName возвращает имя для отображения
func (p *Participant) FullName() string {
	if p.Salutation == "" {
		return p.FirstName + " " + p.LastName
	}
	return p.Salutation + " " + p.FirstName + " " + p.LastName
}
