package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
)

// FormatOptions список опций рейсов. alert меняет заголовок на предупреждение
func FormatOptions(entries []*model.FlightOptionEntry, now time.Time, alert bool) string {
	if len(entries) == 0 {
		return "✅ Активных опций нет."
	}

	var sb strings.Builder
	if alert {
		fmt.Fprintf(&sb, "⚠️ Истекает %d %s:\n\n", len(entries), PluralizeOptions(len(entries)))
	} else {
		fmt.Fprintf(&sb, "⏳ Активные опции (%d):\n\n", len(entries))
	}

	for _, e := range entries {
		sb.WriteString(FormatOptionEntry(e, now))
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatOptionEntry одна опция: бронирование, клиент, рейс, цена и срок
func FormatOptionEntry(e *model.FlightOptionEntry, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📌 №%s", e.BookingNumber)
	if e.CustomerName != "" {
		fmt.Fprintf(&sb, " %s", e.CustomerName)
	}

	if f := e.Flight; f != nil {
		sb.WriteByte('\n')
		sb.WriteString(FormatFlightLine(f))
		if opt := f.Option; opt != nil {
			expiry := FormatISODate(opt.ExpiryDate)
			if days, ok := DaysUntil(opt.ExpiryDate, now); ok {
				expiry += " (" + FormatDaysLeft(days) + ")"
			}
			fmt.Fprintf(&sb, "\n💶 %s, до %s", FormatPrice(opt.Price), expiry)
		}
	}
	return sb.String()
}

// FormatAirports результаты поиска по справочнику аэропортов
func FormatAirports(airports []model.Airport) string {
	if len(airports) == 0 {
		return "🔎 Ничего не найдено."
	}

	var sb strings.Builder
	for _, a := range airports {
		fmt.Fprintf(&sb, "%s  %s", a.IATACode, a.Name)
		if a.Municipality != "" {
			fmt.Fprintf(&sb, ", %s", a.Municipality)
		}
		fmt.Fprintf(&sb, " (%s)\n", a.Country)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatQuickNotes последние быстрые заметки
func FormatQuickNotes(notes []*model.QuickNote) string {
	if len(notes) == 0 {
		return "🗒 Заметок пока нет. Добавить: /note <текст>"
	}

	var sb strings.Builder
	sb.WriteString("🗒 Быстрые заметки:\n\n")
	for _, n := range notes {
		fmt.Fprintf(&sb, "• %s  (%s)\n", n.Text, FormatDateTime(n.CreatedAt))
	}
	return strings.TrimRight(sb.String(), "\n")
}
