package formatting

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/service"
)

// FormatBookingCard текст карточки бронирования для оператора
func FormatBookingCard(o *service.Overview) string {
	b := o.Booking
	status := GetBookingStatusDisplay(b.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Бронирование №%s\n", status.Emoji, b.BookingNumber)
	if b.Customer != nil {
		fmt.Fprintf(&sb, "👤 %s (%s)\n", b.Customer.DisplayName(), b.Customer.CustomerNumber)
	}
	fmt.Fprintf(&sb, "📊 Статус: %s\n", status.Text)
	fmt.Fprintf(&sb, "%s Тип: %s\n", TravelTypeEmoji(o.TravelType), o.TravelType)

	if len(b.Participants) > 0 {
		fmt.Fprintf(&sb, "👥 %d %s\n", len(b.Participants), PluralizeTravelers(len(b.Participants)))
	}

	for _, f := range b.Flights {
		sb.WriteString(FormatFlightLine(f))
		sb.WriteByte('\n')
	}
	for _, h := range b.Hotels {
		fmt.Fprintf(&sb, "🏨 %s, %s - %s\n", h.Name, FormatISODate(h.CheckIn), FormatISODate(h.CheckOut))
	}

	s := o.Summary
	sb.WriteString("\n💶 Финансы\n")
	fmt.Fprintf(&sb, "Продажа: %s\n", FormatPrice(s.TotalSales))
	fmt.Fprintf(&sb, "Закупка: %s\n", FormatPrice(s.TotalPurchase))
	fmt.Fprintf(&sb, "Прибыль: %s (%s)\n", FormatPrice(s.Profit), FormatPercent(s.MarginPercent))
	fmt.Fprintf(&sb, "Оплачено: %s (%s)\n", FormatPrice(s.TotalPaid), FormatPercent(s.PaymentProgressPercent))
	fmt.Fprintf(&sb, "К оплате: %s", FormatPrice(s.Outstanding))

	return sb.String()
}

// FormatFlightLine одна строка перелёта: дата, маршрут, рейс, время
func FormatFlightLine(f *model.Flight) string {
	line := fmt.Sprintf("✈️ %s %s → %s", FormatISODate(f.Date), f.From.Code, f.To.Code)
	if number := strings.TrimSpace(f.Carrier + " " + f.FlightNumber); number != "" {
		line += " " + number
	}
	if f.From.Time != "" && f.To.Time != "" {
		line += fmt.Sprintf(" %s-%s", f.From.Time, f.To.Time)
	}
	return line
}

// FormatBookingChoices список найденных бронирований, когда номер неоднозначен
func FormatBookingChoices(bookings []*model.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔎 Найдено %d %s:\n", len(bookings), PluralizeBookings(len(bookings)))
	for _, b := range bookings {
		status := GetBookingStatusDisplay(b.Status)
		name := ""
		if b.Customer != nil {
			name = " " + b.Customer.DisplayName()
		}
		fmt.Fprintf(&sb, "%s %s%s\n", status.Emoji, b.BookingNumber, name)
	}
	sb.WriteString("\nУточните номер: /booking <номер>")
	return sb.String()
}
