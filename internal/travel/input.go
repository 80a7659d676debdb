package travel

import (
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
)

// onlyDigits выбрасывает из ввода всё кроме ASCII цифр
func onlyDigits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseUserDate разбирает дату, введённую оператором: 15.02.24, 15022024, 15/02/2024.
// Возвращает дату в формате YYYY-MM-DD
func ParseUserDate(input string) (string, bool) {
	numbers := onlyDigits(input)
	if len(numbers) < 6 {
		return "", false
	}

	day := numbers[0:2]
	month := numbers[2:4]
	year := "20" + numbers[4:6]
	if len(numbers) >= 8 {
		year = numbers[4:8]
	}

	date := year + "-" + month + "-" + day
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

// ParseUserTime разбирает время вида 0930, 09:30, 09.30h -> "09:30".
// Нужны минимум четыре цифры: 930 не принимается
func ParseUserTime(input string) (string, bool) {
	numbers := onlyDigits(input)
	if len(numbers) < 4 {
		return "", false
	}

	hours, _ := strconv.Atoi(numbers[0:2])
	minutes, _ := strconv.Atoi(numbers[2:4])
	if hours > 23 || minutes > 59 {
		return "", false
	}
	return numbers[0:2] + ":" + numbers[2:4], true
}

// FormatTime дополняет время нулями слева до HH:MM
func FormatTime(clock string) string {
	if clock == "" {
		return ""
	}
	if len(clock) >= 5 {
		return clock
	}
	return strings.Repeat("0", 5-len(clock)) + clock
}
