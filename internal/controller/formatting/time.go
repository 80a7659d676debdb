package formatting

import (
	"fmt"
	"math"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatISODate переводит "2006-01-02" в "02.01.2006". Нераспознанная строка возвращается как есть
func FormatISODate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return FormatDate(t)
}

// DaysUntil сколько календарных дней осталось до даты (отрицательное значение - в прошлом)
func DaysUntil(date string, now time.Time) (int, bool) {
	t, err := time.ParseInLocation(model.DateLayout, date, now.Location())
	if err != nil {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(math.Round(t.Sub(today).Hours() / 24)), true
}

// FormatDaysLeft "сегодня", "завтра" или "через N дней"
func FormatDaysLeft(days int) string {
	switch {
	case days < 0:
		return "истекла"
	case days == 0:
		return "сегодня"
	case days == 1:
		return "завтра"
	}
	return fmt.Sprintf("через %d %s", days, PluralizeDays(days))
}
