package model

import "time"

type CustomerType string

const (
	CustomerTypePrivate  CustomerType = "private"
	CustomerTypeBusiness CustomerType = "business"
)

type Customer struct {
	ID             string       `json:"id"`
	CustomerNumber string       `json:"customer_number"`
	Type           CustomerType `json:"customer_type"`
	Category       string       `json:"category"`
	CustomerSince  string       `json:"customer_since"`

	// Персональные данные
	Salutation  string `json:"salutation"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Mobile      string `json:"mobile,omitempty"`
	Language    string `json:"language"`
	Nationality string `json:"nationality"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth,omitempty"`

	// Финансовые настройки
	Currency     string `json:"currency"`
	PaymentType  string `json:"payment_type"`
	OutputMedium string `json:"output_medium"`

	// Флаги
	IsInvisible      bool `json:"is_invisible"`
	IsBlocked        bool `json:"is_blocked"`
	IsDunningBlocked bool `json:"is_dunning_blocked"`
	CashPaymentOnly  bool `json:"cash_payment_only"`
	IsDeceased       bool `json:"is_deceased"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName имя клиента для списков и уведомлений
func (c *Customer) DisplayName() string {
	if c == nil {
		return "Unknown Customer"
	}
	if c.Salutation == "" {
		return c.FirstName + " " + c.LastName
	}
	return c.Salutation + " " + c.FirstName + " " + c.LastName
}

// CustomerPatch частичное обновление клиента. nil - поле не меняется
type CustomerPatch struct {
	Type             *CustomerType `json:"customer_type"`
	Category         *string       `json:"category"`
	Salutation       *string       `json:"salutation"`
	FirstName        *string       `json:"first_name"`
	LastName         *string       `json:"last_name"`
	Email            *string       `json:"email"`
	Phone            *string       `json:"phone"`
	Mobile           *string       `json:"mobile"`
	Language         *string       `json:"language"`
	Nationality      *string       `json:"nationality"`
	Gender           *string       `json:"gender"`
	DateOfBirth      *string       `json:"date_of_birth"`
	Currency         *string       `json:"currency"`
	PaymentType      *string       `json:"payment_type"`
	OutputMedium     *string       `json:"output_medium"`
	IsInvisible      *bool         `json:"is_invisible"`
	IsBlocked        *bool         `json:"is_blocked"`
	IsDunningBlocked *bool         `json:"is_dunning_blocked"`
	CashPaymentOnly  *bool         `json:"cash_payment_only"`
	IsDeceased       *bool         `json:"is_deceased"`
}
